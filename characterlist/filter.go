package characterlist

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/goliatone/go-character-list/characters"
)

// Filter returns the characters whose name contains query, ignoring case.
// An empty query returns a copy of list.
func Filter(list []characters.Character, query string) []characters.Character {
	if query == "" {
		return append([]characters.Character(nil), list...)
	}

	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]characters.Character, 0, len(list))
	for _, c := range list {
		if strings.Contains(fold.String(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Merge appends the characters of page that list does not contain yet.
// The first occurrence of an ID wins and arrival order is kept.
func Merge(list, page []characters.Character) []characters.Character {
	seen := make(map[int]struct{}, len(list)+len(page))
	out := make([]characters.Character, 0, len(list)+len(page))
	for _, c := range list {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range page {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
