// Package tui renders a character list controller as a Bubble Tea program.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-character-list/characterlist"
	"github.com/goliatone/go-character-list/characters"
	"github.com/goliatone/go-character-list/imagepipeline"
	"github.com/goliatone/go-character-list/internal/logging"
)

// Controller is the part of characterlist.Controller the browser drives.
type Controller interface {
	Load()
	FetchNextPage() bool
	Retry()
	SetSearchText(text string)
	LoadImage(ctx context.Context, url string) []byte
	ClearImageCache()
	DismissAlert()
	Snapshot() characterlist.Snapshot
}

// SnapshotMsg delivers a controller snapshot to the model.
type SnapshotMsg characterlist.Snapshot

// imageLoadedMsg reports the outcome of an enter press.
type imageLoadedMsg struct {
	name string
	info imagepipeline.ImageInfo
	err  error
	none bool
}

// chromeHeight is the number of lines used around the list.
const chromeHeight = 10

// Model is the Bubble Tea model of the character browser.
type Model struct {
	// UI components
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap
	theme   *Theme

	// State
	snap      characterlist.Snapshot
	cursor    int
	offset    int
	searching bool
	showHelp  bool
	status    string
	width     int
	height    int

	// Dependencies
	ctx  context.Context
	ctrl Controller
}

// New creates a browser over ctrl.
func New(ctx context.Context, ctrl Controller) Model {
	theme := DefaultTheme()
	logging.FromContext(ctx).Debug().Msg("creating character browser")

	return Model{
		search:  NewSearchInput(theme),
		spinner: NewSpinner(theme),
		help:    NewHelp(theme),
		keys:    DefaultKeyMap(),
		theme:   theme,
		snap:    ctrl.Snapshot(),
		width:   80,
		height:  24,
		ctx:     ctx,
		ctrl:    ctrl,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m Model) load() tea.Msg {
	m.ctrl.Load()
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case SnapshotMsg:
		m.snap = characterlist.Snapshot(msg)
		m.clampCursor()
		return m, nil

	case imageLoadedMsg:
		m.status = describeImage(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleNormalKey(msg)
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.ctrl.SetSearchText(after)
	}
	return m, cmd
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Filtered)-1 {
			m.cursor++
		}
		m.clampCursor()
		// reaching the last row pages in more characters
		if m.cursor == len(m.snap.Filtered)-1 && m.snap.Pagination.HasMore() {
			m.ctrl.FetchNextPage()
		}
	case key.Matches(msg, m.keys.NextPage):
		m.ctrl.FetchNextPage()
	case key.Matches(msg, m.keys.Image):
		if ch, ok := m.selected(); ok {
			m.status = "loading image for " + ch.Name + "..."
			return m, m.loadImage(ch)
		}
	case key.Matches(msg, m.keys.Retry):
		m.ctrl.Retry()
	case key.Matches(msg, m.keys.ClearCache):
		m.ctrl.ClearImageCache()
		m.status = "image memory cache cleared"
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissAlert()
	}
	return m, nil
}

func (m Model) loadImage(ch characters.Character) tea.Cmd {
	return func() tea.Msg {
		data := m.ctrl.LoadImage(m.ctx, ch.Image)
		if data == nil {
			return imageLoadedMsg{name: ch.Name, none: true}
		}
		info, err := imagepipeline.Inspect(data)
		return imageLoadedMsg{name: ch.Name, info: info, err: err}
	}
}

func describeImage(msg imageLoadedMsg) string {
	switch {
	case msg.none:
		return "no image available for " + msg.name
	case msg.err != nil:
		return fmt.Sprintf("image for %s could not be read", msg.name)
	default:
		return fmt.Sprintf("%s: %s %dx%d, %d bytes", msg.name, msg.info.Format, msg.info.Width, msg.info.Height, msg.info.Size)
	}
}

func (m Model) selected() (characters.Character, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Filtered) {
		return characters.Character{}, false
	}
	return m.snap.Filtered[m.cursor], true
}

func (m Model) visibleRows() int {
	rows := m.height - chromeHeight
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m *Model) clampCursor() {
	n := len(m.snap.Filtered)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Characters"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(m.body())

	if a := m.snap.Alert; a != nil {
		content := m.theme.AlertTitle.Render(a.Title)
		if a.HasSubtitle() {
			content += "\n" + a.Subtitle
		}
		b.WriteString("\n")
		b.WriteString(m.theme.AlertBox.Render(content))
	}

	b.WriteString(m.theme.StatusBar.Render(m.statusLine()))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return b.String()
}

func (m Model) body() string {
	switch m.snap.State.Kind {
	case characterlist.StateLoading:
		return m.spinner.View() + " Loading characters..."
	case characterlist.StateNoData:
		return m.theme.Subtle.Render("No characters found.")
	case characterlist.StateError:
		return m.theme.ErrorStyle.Render(m.snap.State.Message) + "\n" +
			m.theme.Subtle.Render("Press r to retry.")
	case characterlist.StateShowData:
		return m.rows()
	default:
		return ""
	}
}

func (m Model) rows() string {
	if len(m.snap.Filtered) == 0 {
		return m.theme.Subtle.Render(fmt.Sprintf("Nothing matches %q.", m.snap.SearchText))
	}

	end := m.offset + m.visibleRows()
	if end > len(m.snap.Filtered) {
		end = len(m.snap.Filtered)
	}

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		ch := m.snap.Filtered[i]
		line := fmt.Sprintf("%s  %s", ch.Name, m.theme.Subtle.Render(ch.Species+" · "+ch.Status))
		if i == m.cursor {
			lines = append(lines, m.theme.ItemSelected.Render("> "+line))
		} else {
			lines = append(lines, m.theme.Item.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) statusLine() string {
	p := m.snap.Pagination
	line := fmt.Sprintf("page %d/%d · %d loaded · %d shown", p.CurrentPage, p.TotalPages, len(m.snap.Characters), len(m.snap.Filtered))
	if m.snap.Fetching && m.snap.State.Is(characterlist.StateShowData) {
		line += " · " + m.spinner.View() + " loading more"
	}
	if m.status != "" {
		line += " · " + m.status
	}
	return line
}

// Run shows ctrl until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *characterlist.Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, ctrl), opts...)

	ctrl.Subscribe(func(s characterlist.Snapshot) {
		p.Send(SnapshotMsg(s))
	})
	defer ctrl.Subscribe(nil)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
