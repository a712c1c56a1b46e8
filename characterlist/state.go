package characterlist

import (
	"github.com/goliatone/go-character-list/alert"
	"github.com/goliatone/go-character-list/characters"
)

// StateKind enumerates the screen states.
type StateKind string

const (
	StateIdle     StateKind = "idle"
	StateLoading  StateKind = "loading"
	StateNoData   StateKind = "no_data"
	StateShowData StateKind = "show_data"
	StateError    StateKind = "error"
)

// ViewState is the single state of the screen. Message is set only for StateError.
type ViewState struct {
	Kind    StateKind
	Message string
}

func Idle() ViewState     { return ViewState{Kind: StateIdle} }
func Loading() ViewState  { return ViewState{Kind: StateLoading} }
func NoData() ViewState   { return ViewState{Kind: StateNoData} }
func ShowData() ViewState { return ViewState{Kind: StateShowData} }

// Failed is the error state carrying a human readable description.
func Failed(message string) ViewState {
	return ViewState{Kind: StateError, Message: message}
}

// Is reports whether the state has kind k.
func (v ViewState) Is(k StateKind) bool {
	return v.Kind == k
}

func (v ViewState) String() string {
	if v.Kind == StateError {
		return string(v.Kind) + ": " + v.Message
	}
	return string(v.Kind)
}

// Pagination tracks the page cursor. TotalPages is zero until the first page arrives.
type Pagination struct {
	CurrentPage int
	PerPage     int
	TotalPages  int
}

// HasMore reports whether FetchNextPage would advance.
func (p Pagination) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}

// Snapshot is what subscribers receive after every change.
type Snapshot struct {
	State      ViewState
	Characters []characters.Character
	Filtered   []characters.Character
	SearchText string
	Pagination Pagination
	Alert      *alert.Alert
	// Fetching is true while a page request is in flight.
	Fetching bool
}
