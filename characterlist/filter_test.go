package characterlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-character-list/characters"
)

func named(id int, name string) characters.Character {
	return characters.Character{ID: id, Name: name}
}

func ids(list []characters.Character) []int {
	out := make([]int, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	list := []characters.Character{
		named(1, "Rick Sanchez"),
		named(2, "Morty Smith"),
		named(3, "Summer Smith"),
		named(4, "Straße Rick"),
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"empty returns all", "", []int{1, 2, 3, 4}},
		{"case insensitive", "MORTY", []int{2}},
		{"substring", "smi", []int{2, 3}},
		{"shared substring", "rick", []int{1, 4}},
		{"no match", "Birdperson", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(list, tt.query)))
		})
	}
}

func TestFilterFoldsCase(t *testing.T) {
	list := []characters.Character{named(1, "ÉLODIE"), named(2, "Σίσυφος")}

	assert.Equal(t, []int{1}, ids(Filter(list, "élodie")))
	assert.Equal(t, []int{2}, ids(Filter(list, "ΣΊΣΥΦΟΣ")))
}

func TestFilterEmptyQueryCopies(t *testing.T) {
	list := []characters.Character{named(1, "Rick")}
	out := Filter(list, "")
	out[0].Name = "changed"

	assert.Equal(t, "Rick", list[0].Name)
}

func TestMergeDeduplicatesByID(t *testing.T) {
	page1 := []characters.Character{named(1, "Rick"), named(2, "Morty")}
	page2 := []characters.Character{named(2, "Morty (copy)"), named(3, "Summer")}

	merged := Merge(Merge(nil, page1), page2)

	assert.Equal(t, []int{1, 2, 3}, ids(merged))
	assert.Equal(t, "Morty", merged[1].Name, "first occurrence wins")
}

func TestMergeDuplicatesWithinPage(t *testing.T) {
	merged := Merge(nil, []characters.Character{named(5, "a"), named(5, "b"), named(6, "c")})
	assert.Equal(t, []int{5, 6}, ids(merged))
}
