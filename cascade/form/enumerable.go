package form

import (
	"errors"
	"strconv"
	"strings"
)

// Enumerable is the finite, read-only set of candidate records for a field.
// Implementations must be safe to query repeatedly; fields never cache the
// results between validations.
type Enumerable[R any] interface {
	// Records returns every candidate record in display order.
	Records() ([]R, error)
	// Get returns the record with the given identifier.  It returns an error
	// wrapping ErrNotFound when there is none and an *InvalidIDError when id
	// is not a valid identifier.
	Get(id string) (R, error)
	// In returns the records whose identifier is one of ids, in the
	// enumerable's natural order.
	In(ids []string) ([]R, error)
}

// IDChecker is implemented by enumerables that can tell whether a string is
// a well-formed identifier without querying the backing store.
type IDChecker interface {
	CheckID(id string) error
}

// SliceEnumerable is an in-memory Enumerable over a fixed slice of records.
type SliceEnumerable[R any] struct {
	records []R
	key     func(R) string
	// Parse, if set, validates identifiers before lookup.
	Parse func(id string) error
}

// NewSliceEnumerable returns an Enumerable over records, identified by key.
// The slice is copied.
func NewSliceEnumerable[R any](records []R, key func(R) string) *SliceEnumerable[R] {
	recs := make([]R, len(records))
	copy(recs, records)
	return &SliceEnumerable[R]{records: recs, key: key}
}

func (s *SliceEnumerable[R]) Records() ([]R, error) {
	recs := make([]R, len(s.records))
	copy(recs, s.records)
	return recs, nil
}

func (s *SliceEnumerable[R]) Get(id string) (R, error) {
	var zero R
	if err := s.CheckID(id); err != nil {
		return zero, err
	}
	id = normalizeID(id)
	for _, r := range s.records {
		if normalizeID(s.key(r)) == id {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

func (s *SliceEnumerable[R]) In(ids []string) ([]R, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := s.CheckID(id); err != nil {
			return nil, err
		}
		want[normalizeID(id)] = true
	}
	found := make([]R, 0, len(ids))
	for _, r := range s.records {
		if want[normalizeID(s.key(r))] {
			found = append(found, r)
		}
	}
	return found, nil
}

// CheckID applies the Parse function, if any.
func (s *SliceEnumerable[R]) CheckID(id string) error {
	if s.Parse == nil {
		return nil
	}
	if err := s.Parse(id); err != nil {
		return &InvalidIDError{ID: id, Err: err}
	}
	return nil
}

// ParseInt is a Parse function for integer identifiers.
func ParseInt(id string) error {
	_, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	return err
}

// normalizeID returns the canonical form of an identifier for comparison:
// integers in decimal without leading zeros or sign, anything else trimmed.
func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return id
}

// SameID reports whether two identifiers refer to the same value.
func SameID(a, b string) bool {
	return normalizeID(a) == normalizeID(b)
}

func isInvalidID(err error) bool {
	var iderr *InvalidIDError
	return errors.As(err, &iderr)
}
