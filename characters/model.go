// Package characters talks to the remote character API: paged listings and
// image downloads.
package characters

import "time"

// Character is a single list entry. It is immutable once fetched and identified by ID.
type Character struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Species string    `json:"species"`
	Type    string    `json:"type"`
	Gender  string    `json:"gender"`
	Image   string    `json:"image"`
	URL     string    `json:"url"`
	Created time.Time `json:"created"`
}

// CharacterPage is one page of the remote listing.
type CharacterPage struct {
	Items      []Character
	PageIndex  int
	TotalPages int
	TotalCount int
}

// HasNext reports whether the API has pages after this one.
func (p CharacterPage) HasNext() bool {
	return p.PageIndex < p.TotalPages
}

// pageResponse mirrors the JSON body of GET /character.
type pageResponse struct {
	Info struct {
		Count int     `json:"count"`
		Pages int     `json:"pages"`
		Next  *string `json:"next"`
		Prev  *string `json:"prev"`
	} `json:"info"`
	Results []Character `json:"results"`
}

func (r pageResponse) toPage(index int) CharacterPage {
	items := r.Results
	if items == nil {
		items = []Character{}
	}
	return CharacterPage{
		Items:      items,
		PageIndex:  index,
		TotalPages: r.Info.Pages,
		TotalCount: r.Info.Count,
	}
}
