package form

import (
	"strconv"
	"testing"
)

type book struct {
	ID       int
	Name     string
	AuthorID int
}

// Five books: 1-3 by author 1, 4-5 by author 2.
var fixtureBooks = []book{
	{ID: 1, Name: "La Fortune des Rougon", AuthorID: 1},
	{ID: 2, Name: "La Curee", AuthorID: 1},
	{ID: 3, Name: "Le Ventre de Paris", AuthorID: 1},
	{ID: 4, Name: "Le Rouge et le Noir", AuthorID: 2},
	{ID: 5, Name: "La Chartreuse de Parme", AuthorID: 2},
}

func bookKey(b book) string {
	return strconv.Itoa(b.ID)
}

func bookParent(b book) (string, bool) {
	if b.AuthorID == 0 {
		return "", false
	}
	return strconv.Itoa(b.AuthorID), true
}

func bookLabel(b book) string {
	return b.Name
}

func bookRecords(books []book) *SliceEnumerable[book] {
	recs := NewSliceEnumerable(books, bookKey)
	recs.Parse = ParseInt
	return recs
}

func newBookField(t *testing.T, books []book, multiple bool) *RelatedField[book] {
	t.Helper()
	f, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(books),
		Key:         bookKey,
		Parent:      bookParent,
		Label:       bookLabel,
		Required:    true,
		Multiple:    multiple,
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}
	return f
}
