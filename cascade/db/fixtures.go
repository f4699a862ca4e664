package db

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixtures is the catalog data loaded into an empty database.
type Fixtures struct {
	Authors []AuthorFixture `yaml:"authors"`
	Books   []BookFixture   `yaml:"books"`
}

type AuthorFixture struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Title     string `yaml:"title"`
	BirthDate string `yaml:"birth_date"`
}

type BookFixture struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Author int64  `yaml:"author"`
}

// ReadFixtures decodes YAML fixtures from r.
func ReadFixtures(r io.Reader) (*Fixtures, error) {
	fx := new(Fixtures)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return fx, nil
}

// LoadFixturesFile reads the YAML fixtures at path and inserts them.
func (conn *Connection) LoadFixturesFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fx, err := ReadFixtures(f)
	if err != nil {
		return err
	}
	return conn.LoadFixtures(fx)
}

// LoadFixtures inserts the authors and books of fx in one transaction.
// Books must refer to authors that are part of the fixtures or already in
// the database.
func (conn *Connection) LoadFixtures(fx *Fixtures) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}

	for _, af := range fx.Authors {
		a := &Author{ID: af.ID, Name: af.Name, Title: af.Title}
		if af.BirthDate != "" {
			bd, err := time.Parse("2006-01-02", af.BirthDate)
			if err != nil {
				sess.Rollback()
				return fmt.Errorf("author %q: invalid birth date: %w", af.Name, err)
			}
			a.BirthDate = bd
		}
		if _, err := sess.Insert(a); err != nil {
			sess.Rollback()
			return fmt.Errorf("insert author %q: %w", af.Name, err)
		}
	}
	for _, bf := range fx.Books {
		if bf.Author != 0 {
			if has, err := sess.Exist(&Author{ID: bf.Author}); err != nil {
				sess.Rollback()
				return err
			} else if !has {
				sess.Rollback()
				return fmt.Errorf("book %q: unknown author %d", bf.Name, bf.Author)
			}
		}
		b := &Book{ID: bf.ID, Name: bf.Name, AuthorID: bf.Author}
		if _, err := sess.Insert(b); err != nil {
			sess.Rollback()
			return fmt.Errorf("insert book %q: %w", bf.Name, err)
		}
	}
	return sess.Commit()
}
