package cascade

import (
	"github.com/G-Node/cascade/cascade/db"
	"github.com/G-Node/cascade/cascade/form"
)

// BookSelectionForm returns a form for choosing an author and one of the
// author's books, or several of them if multiple is set.
func BookSelectionForm(conn *db.Connection, multiple bool) (form.Form, error) {
	books, err := conn.Books("id")
	if err != nil {
		return form.Form{}, err
	}
	authors := conn.Authors()
	author := form.NewChoiceField[*db.Author]("author", authors, (*db.Author).PK, (*db.Author).Label, true)
	book, err := form.NewRelatedField(form.Config[*db.Book]{
		Name:        "book",
		RelatedName: "author",
		Records:     books,
		Key:         books.Key,
		Parent:      (*db.Book).Parent,
		Label:       (*db.Book).Label,
		Required:    true,
		Multiple:    multiple,
	})
	if err != nil {
		return form.Form{}, err
	}

	name := "Book selection"
	if multiple {
		name = "Multiple book selection"
	}
	elements := []form.Element{
		{
			Name:     "author",
			Label:    "Author",
			Required: true,
			Type:     form.Select,
			Widget:   author,
		},
		{
			Name:        "book",
			Label:       "Book",
			Required:    true,
			Type:        form.Select,
			Description: "Only the books of the selected author are listed.",
			Widget:      book,
		},
	}
	return form.Form{
		Name:  name,
		Pages: []form.Page{{Elements: elements}},
	}, nil
}
