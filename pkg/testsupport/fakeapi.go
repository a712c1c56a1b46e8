package testsupport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeAPI serves a small character API over httptest:
//
//	GET /api/character?page=N   paged listing
//	GET /avatar/{id}.png        a generated PNG per character
type FakeAPI struct {
	server *httptest.Server

	mu          sync.Mutex
	pages       [][]fakeCharacter
	pageStatus  map[int]int
	imageStatus map[int]int
	hits        map[string]int
	block       chan struct{}
}

type fakeCharacter struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Type    string `json:"type"`
	Gender  string `json:"gender"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	Created string `json:"created"`
}

// NewFakeAPI starts a server with one page per element of pages. Character
// IDs are assigned from 1 in page order unless a name is repeated, in which
// case the earlier ID is reused.
func NewFakeAPI(t testing.TB, pages ...[]string) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		pageStatus:  map[int]int{},
		imageStatus: map[int]int{},
		hits:        map[string]int{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)

	ids := map[string]int{}
	next := 1
	for _, names := range pages {
		page := make([]fakeCharacter, 0, len(names))
		for _, name := range names {
			id, ok := ids[name]
			if !ok {
				id = next
				ids[name] = id
				next++
			}
			page = append(page, fakeCharacter{
				ID:      id,
				Name:    name,
				Status:  "Alive",
				Species: "Human",
				Gender:  "unknown",
				Image:   f.ImageURL(id),
				URL:     fmt.Sprintf("%s/api/character/%d", f.server.URL, id),
				Created: "2017-11-04T18:48:46.250Z",
			})
		}
		f.pages = append(f.pages, page)
	}

	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeAPI) BaseURL() string {
	return f.server.URL + "/api"
}

// ImageURL is the avatar URL of character id.
func (f *FakeAPI) ImageURL(id int) string {
	return fmt.Sprintf("%s/avatar/%d.png", f.server.URL, id)
}

// FailPage makes page answer with status until cleared with status 0.
func (f *FakeAPI) FailPage(page, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.pageStatus, page)
		return
	}
	f.pageStatus[page] = status
}

// FailImage makes the avatar of id answer with status until cleared with status 0.
func (f *FakeAPI) FailImage(id, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.imageStatus, id)
		return
	}
	f.imageStatus[id] = status
}

// Block holds every request until Unblock is called.
func (f *FakeAPI) Block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.block == nil {
		f.block = make(chan struct{})
	}
}

// Unblock releases requests held by Block.
func (f *FakeAPI) Unblock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.block != nil {
		close(f.block)
		f.block = nil
	}
}

// PageHits reports how many times page was requested.
func (f *FakeAPI) PageHits(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits["page:"+strconv.Itoa(page)]
}

// ImageHits reports how many times the avatar of id was requested.
func (f *FakeAPI) ImageHits(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits["image:"+strconv.Itoa(id)]
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case r.URL.Path == "/api/character":
		f.servePage(w, r)
	case strings.HasPrefix(r.URL.Path, "/avatar/"):
		f.serveImage(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeAPI) servePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	f.mu.Lock()
	f.hits["page:"+strconv.Itoa(page)]++
	status := f.pageStatus[page]
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"error":"forced failure"}`, status)
		return
	}
	if page > len(f.pages) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
		return
	}

	count := 0
	for _, p := range f.pages {
		count += len(p)
	}

	body := map[string]any{
		"info": map[string]any{
			"count": count,
			"pages": len(f.pages),
			"next":  nil,
			"prev":  nil,
		},
		"results": f.pages[page-1],
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (f *FakeAPI) serveImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/avatar/"), ".png"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	f.hits["image:"+strconv.Itoa(id)]++
	status := f.imageStatus[id]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(AvatarPNG(id))
}

// AvatarPNG renders the deterministic 4x4 avatar served for id.
func AvatarPNG(id int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := color.RGBA{R: uint8(id * 40), G: uint8(id * 90), B: uint8(id * 10), A: 0xff}
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
