package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/G-Node/cascade/cascade/form"
	"xorm.io/xorm"
)

var (
	_ form.Enumerable[*Author] = (*AuthorSet)(nil)
	_ form.Enumerable[*Book]   = (*BookSet)(nil)
	_ form.IDChecker           = (*BookSet)(nil)
)

// Author is a parent record: the books of an author can only be chosen
// together with the author.
type Author struct {
	ID        int64 `xorm:"pk autoincr"`
	Name      string
	Title     string
	BirthDate time.Time `xorm:"null"`
}

// Book is a dependent record belonging to one Author.
type Book struct {
	ID       int64 `xorm:"pk autoincr"`
	Name     string
	AuthorID int64 `xorm:"index"`
}

// PK returns the book's primary key as it appears in forms.
func (b *Book) PK() string {
	return strconv.FormatInt(b.ID, 10)
}

// Parent returns the identifier of the book's author.
func (b *Book) Parent() (string, bool) {
	if b.AuthorID == 0 {
		return "", false
	}
	return strconv.FormatInt(b.AuthorID, 10), true
}

// Label returns the display name of the book.
func (b *Book) Label() string {
	return b.Name
}

// PK returns the author's primary key as it appears in forms.
func (a *Author) PK() string {
	return strconv.FormatInt(a.ID, 10)
}

// Label returns the display name of the author.
func (a *Author) Label() string {
	return a.Name
}

// InsertAuthor inserts a new Author.  A zero ID is assigned on insertion.
func (conn *Connection) InsertAuthor(a *Author) error {
	_, err := conn.engine.Insert(a)
	return err
}

// InsertBook inserts a new Book.  A zero ID is assigned on insertion.
func (conn *Connection) InsertBook(b *Book) error {
	_, err := conn.engine.Insert(b)
	return err
}

// Authors returns the authors as candidates for a form field.
func (conn *Connection) Authors() *AuthorSet {
	return &AuthorSet{engine: conn.engine}
}

// Books returns the books as candidates for a form field, identified by the
// given column: "id" (the primary key) or "name".
func (conn *Connection) Books(column string) (*BookSet, error) {
	switch column {
	case "", "id":
		return &BookSet{engine: conn.engine, column: "id"}, nil
	case "name":
		return &BookSet{engine: conn.engine, column: "name"}, nil
	}
	return nil, fmt.Errorf("books can't be identified by column %q", column)
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, &form.InvalidIDError{ID: id, Err: err}
	}
	return n, nil
}

func parseIDs(ids []string) ([]int64, error) {
	nums := make([]int64, len(ids))
	for idx, id := range ids {
		n, err := parseID(id)
		if err != nil {
			return nil, err
		}
		nums[idx] = n
	}
	return nums, nil
}

// AuthorSet is the Enumerable of all authors, ordered by ID.
type AuthorSet struct {
	engine *xorm.Engine
}

func (s *AuthorSet) Records() ([]*Author, error) {
	authors := make([]*Author, 0)
	if err := s.engine.Asc("id").Find(&authors); err != nil {
		return nil, err
	}
	return authors, nil
}

func (s *AuthorSet) Get(id string) (*Author, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	a := new(Author)
	if has, err := s.engine.ID(n).Get(a); err != nil {
		return nil, err
	} else if !has {
		return nil, form.ErrNotFound
	}
	return a, nil
}

func (s *AuthorSet) In(ids []string) ([]*Author, error) {
	nums, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	authors := make([]*Author, 0, len(nums))
	if len(nums) == 0 {
		return authors, nil
	}
	if err := s.engine.In("id", nums).Asc("id").Find(&authors); err != nil {
		return nil, err
	}
	return authors, nil
}

func (s *AuthorSet) CheckID(id string) error {
	_, err := parseID(id)
	return err
}

// BookSet is the Enumerable of all books, ordered by ID and identified by
// its column.
type BookSet struct {
	engine *xorm.Engine
	column string
}

// Key returns the identifier of a book in the set's column.
func (s *BookSet) Key(b *Book) string {
	if s.column == "name" {
		return b.Name
	}
	return b.PK()
}

func (s *BookSet) Records() ([]*Book, error) {
	books := make([]*Book, 0)
	if err := s.engine.Asc("id").Find(&books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *BookSet) Get(id string) (*Book, error) {
	b := new(Book)
	var has bool
	var err error
	if s.column == "name" {
		has, err = s.engine.Where("name = ?", id).Get(b)
	} else {
		n, perr := parseID(id)
		if perr != nil {
			return nil, perr
		}
		has, err = s.engine.ID(n).Get(b)
	}
	if err != nil {
		return nil, err
	} else if !has {
		return nil, form.ErrNotFound
	}
	return b, nil
}

func (s *BookSet) In(ids []string) ([]*Book, error) {
	books := make([]*Book, 0, len(ids))
	if len(ids) == 0 {
		return books, nil
	}
	if s.column == "name" {
		if err := s.engine.In("name", ids).Asc("id").Find(&books); err != nil {
			return nil, err
		}
		return books, nil
	}
	nums, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	if err := s.engine.In("id", nums).Asc("id").Find(&books); err != nil {
		return nil, err
	}
	return books, nil
}

// CheckID reports identifiers that can't be compared with the set's column.
func (s *BookSet) CheckID(id string) error {
	if s.column == "name" {
		return nil
	}
	_, err := parseID(id)
	return err
}
