package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the lipgloss styles of the browser.
type Theme struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Text   lipgloss.Color
	Error  lipgloss.Color

	Title        lipgloss.Style
	Subtle       lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ErrorStyle   lipgloss.Style
	AlertBox     lipgloss.Style
	AlertTitle   lipgloss.Style
	StatusBar    lipgloss.Style
}

// DefaultTheme returns the dark theme.
func DefaultTheme() *Theme {
	t := &Theme{
		Accent: lipgloss.Color("#97ce4c"),
		Muted:  lipgloss.Color("#6c7086"),
		Text:   lipgloss.Color("#cdd6f4"),
		Error:  lipgloss.Color("#f38ba8"),
	}

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginBottom(1)
	t.Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Item = lipgloss.NewStyle().Foreground(t.Text).PaddingLeft(2)
	t.ItemSelected = lipgloss.NewStyle().Foreground(t.Accent).Bold(true).PaddingLeft(0)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	t.AlertBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Padding(0, 1)
	t.AlertTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	t.StatusBar = lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1)
	return t
}

// NewSearchInput creates the search field.
func NewSearchInput(t *Theme) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search characters..."
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(t.Muted)
	ti.TextStyle = lipgloss.NewStyle().Foreground(t.Text)
	ti.PromptStyle = lipgloss.NewStyle().Foreground(t.Accent)
	ti.Prompt = "/ "
	ti.CharLimit = 128
	return ti
}

// NewSpinner creates the loading spinner.
func NewSpinner(t *Theme) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(t.Accent)
	return s
}

// NewHelp creates the themed help view.
func NewHelp(t *Theme) help.Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(t.Accent)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(t.Muted)
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return h
}

// KeyMap holds the browser keybindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPage   key.Binding
	Image      key.Binding
	Search     key.Binding
	Retry      key.Binding
	ClearCache key.Binding
	Dismiss    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Image, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage},
		{k.Image, k.ClearCache},
		{k.Search, k.Retry, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next page"),
		),
		Image: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load image"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		ClearCache: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear image cache"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss alert"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
