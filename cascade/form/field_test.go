package form

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func TestNewRelatedFieldConfig(t *testing.T) {
	good := Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(fixtureBooks),
		Key:         bookKey,
		Parent:      bookParent,
	}
	if _, err := NewRelatedField(good); err != nil {
		t.Fatalf("Failed to create field from valid config: %s", err.Error())
	}

	bad := []func(*Config[book]){
		func(c *Config[book]) { c.Name = "" },
		func(c *Config[book]) { c.RelatedName = "" },
		func(c *Config[book]) { c.Records = nil },
		func(c *Config[book]) { c.Key = nil },
		func(c *Config[book]) { c.Parent = nil },
	}
	for idx, modify := range bad {
		cfg := good
		modify(&cfg)
		if _, err := NewRelatedField(cfg); err == nil {
			t.Fatalf("Invalid config [%d] accepted", idx)
		}
	}
}

func TestValidateConsistent(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)
	for _, b := range fixtureBooks {
		parent, _ := bookParent(b)
		got, err := f.Validate(Submission{{Value: bookKey(b), Parent: parent}})
		if err != nil {
			t.Fatalf("Consistent submission for book %d rejected: %s", b.ID, err.Error())
		}
		if got != b {
			t.Fatalf("Unexpected record: %+v (expected %+v)", got, b)
		}
	}

	// identifiers are compared as numbers
	if _, err := f.Validate(Submission{{Value: "01", Parent: " 1"}}); err != nil {
		t.Fatalf("Submission with non-canonical identifiers rejected: %s", err.Error())
	}
}

func TestValidateInconsistent(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)
	_, err := f.Validate(Submission{{Value: "4", Parent: "1"}})
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("Inconsistent submission not rejected with consistency error: %v", err)
	}
	if err.Error() != "Value does not match author value." {
		t.Fatalf("Unexpected error message: %q", err.Error())
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "book" || verr.Value != "4" {
		t.Fatalf("Unexpected validation error details: %+v", err)
	}

	if _, err := f.Validate(Submission{{Value: "4", Parent: ""}}); !errors.Is(err, ErrConsistency) {
		t.Fatalf("Submission without parent value not rejected: %v", err)
	}
	if _, err := f.Validate(Submission{{Value: "4", Parent: "two"}}); !errors.Is(err, ErrConsistency) {
		t.Fatalf("Submission with non-numeric parent value not rejected: %v", err)
	}
}

func TestValidateInvalidChoice(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)
	for _, value := range []string{"42", "abc"} {
		_, err := f.Validate(Submission{{Value: value, Parent: "1"}})
		if !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("Unknown value %q not rejected as invalid choice: %v", value, err)
		}
		exp := fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value)
		if err.Error() != exp {
			t.Fatalf("Unexpected error message: %q (expected %q)", err.Error(), exp)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)
	if _, err := f.Validate(Submission{{Value: "", Parent: "1"}}); !errors.Is(err, ErrRequired) {
		t.Fatalf("Empty submission on required field not rejected: %v", err)
	}

	optional, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(fixtureBooks),
		Key:         bookKey,
		Parent:      bookParent,
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}
	got, err := optional.Validate(Submission{{Value: "", Parent: "1"}})
	if err != nil {
		t.Fatalf("Empty submission on optional field rejected: %s", err.Error())
	}
	if got != (book{}) {
		t.Fatalf("Empty submission returned a record: %+v", got)
	}
}

func TestValidateMalformed(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)
	for _, sub := range []Submission{nil, {{Value: "1", Parent: "1"}, {Value: "2", Parent: "1"}}} {
		_, err := f.Validate(sub)
		if !errors.Is(err, ErrMalformedValue) {
			t.Fatalf("Malformed submission %+v not rejected: %v", sub, err)
		}
	}
}

func TestValidateOrphan(t *testing.T) {
	books := append([]book{{ID: 9, Name: "Anonymous"}}, fixtureBooks...)
	f := newBookField(t, books, false)
	if _, err := f.Validate(Submission{{Value: "9", Parent: ""}}); err != nil {
		t.Fatalf("Record without parent rejected with empty parent value: %s", err.Error())
	}
	if _, err := f.Validate(Submission{{Value: "9", Parent: "1"}}); !errors.Is(err, ErrConsistency) {
		t.Fatalf("Record without parent accepted for a parent value: %v", err)
	}
}

func TestValidateMultiple(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	got, err := f.ValidateMultiple(Submission{{Value: "3", Parent: "1"}, {Value: "1", Parent: "1"}})
	if err != nil {
		t.Fatalf("Consistent submission rejected: %s", err.Error())
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("Unexpected records or order: %+v", got)
	}

	got, err = f.ValidateMultiple(Submission{{Value: "2", Parent: "1"}, {Value: "02", Parent: "1"}})
	if err != nil {
		t.Fatalf("Submission with repeated value rejected: %s", err.Error())
	}
	if len(got) != 1 {
		t.Fatalf("Repeated value returned %d records (expected 1)", len(got))
	}
}

func TestValidateMultipleInconsistent(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	_, err := f.ValidateMultiple(Submission{{Value: "1", Parent: "1"}, {Value: "4", Parent: "1"}})
	if !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Inconsistent submission not rejected as invalid choice: %v", err)
	}
	if err.Error() != "Select a valid choice. 4 is not one of the available choices." {
		t.Fatalf("Unexpected error message: %q", err.Error())
	}

	_, err = f.ValidateMultiple(Submission{{Value: "7", Parent: "2"}})
	if !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Unknown value not rejected as invalid choice: %v", err)
	}
}

func TestValidateMultipleInvalidPrimaryKey(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	_, err := f.ValidateMultiple(Submission{{Value: "1", Parent: "1"}, {Value: "x1", Parent: "1"}})
	if !errors.Is(err, ErrInvalidPrimaryKey) {
		t.Fatalf("Malformed identifier not rejected: %v", err)
	}
	if err.Error() != `"x1" is not a valid value for a primary key.` {
		t.Fatalf("Unexpected error message: %q", err.Error())
	}
}

// unchecked resolves identifiers without an IDChecker and reports malformed
// identifiers from In.
type unchecked struct {
	*SliceEnumerable[book]
}

func (u unchecked) In(ids []string) ([]book, error) {
	for _, id := range ids {
		if err := ParseInt(id); err != nil {
			return nil, &InvalidIDError{ID: id, Err: err}
		}
	}
	return u.SliceEnumerable.In(ids)
}

func TestValidateMultipleInvalidPrimaryKeyFromLookup(t *testing.T) {
	f, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     unchecked{NewSliceEnumerable(fixtureBooks, bookKey)},
		Key:         bookKey,
		Parent:      bookParent,
		Multiple:    true,
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}
	_, err = f.ValidateMultiple(Submission{{Value: "y", Parent: "1"}})
	if !errors.Is(err, ErrInvalidPrimaryKey) || !strings.Contains(err.Error(), `"y"`) {
		t.Fatalf("Malformed identifier not rejected: %v", err)
	}
}

func TestValidateMultipleEmpty(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	if _, err := f.ValidateMultiple(nil); !errors.Is(err, ErrRequired) {
		t.Fatalf("Empty submission on required field not rejected: %v", err)
	}

	optional, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(fixtureBooks),
		Key:         bookKey,
		Parent:      bookParent,
		Multiple:    true,
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}
	got, err := optional.ValidateMultiple(Submission{})
	if err != nil {
		t.Fatalf("Empty submission on optional field rejected: %s", err.Error())
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Empty submission returned %+v (expected empty slice)", got)
	}
}

func TestValidateMultipleMixedParents(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	_, err := f.ValidateMultiple(Submission{{Value: "1", Parent: "1"}, {Value: "4", Parent: "2"}})
	if !errors.Is(err, ErrMalformedValue) || err.Error() != "Enter a list of values." {
		t.Fatalf("Pairs with different parent values not rejected: %v", err)
	}
}

func TestValidateMultipleValidators(t *testing.T) {
	var seen Submission
	record := ValidatorFunc(func(sub Submission) error {
		seen = sub
		return nil
	})
	f, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(fixtureBooks),
		Key:         bookKey,
		Parent:      bookParent,
		Multiple:    true,
		Validators:  []Validator{record, MaxChoices(2)},
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}

	sub := Submission{{Value: "1", Parent: "1"}, {Value: "2", Parent: "1"}}
	if _, err := f.ValidateMultiple(sub); err != nil {
		t.Fatalf("Submission rejected: %s", err.Error())
	}
	if len(seen) != 2 || seen[0] != sub[0] || seen[1] != sub[1] {
		t.Fatalf("Validator did not receive the raw submission: %+v", seen)
	}

	_, err = f.ValidateMultiple(Submission{{Value: "1", Parent: "1"}, {Value: "2", Parent: "1"}, {Value: "3", Parent: "1"}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "book" {
		t.Fatalf("Validator failure not reported for field: %v", err)
	}

	// structural checks run first
	seen = nil
	if _, err := f.ValidateMultiple(Submission{{Value: "4", Parent: "1"}}); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Inconsistent submission not rejected: %v", err)
	}
	if seen != nil {
		t.Fatal("Validator ran on a structurally invalid submission")
	}
}

func TestValidateValidators(t *testing.T) {
	calls := 0
	reject := ValidatorFunc(func(sub Submission) error {
		calls++
		if sub[0].Value == "3" {
			return &ValidationError{Kind: ErrInvalidChoice, Message: "Not this one."}
		}
		return nil
	})
	f, err := NewRelatedField(Config[book]{
		Name:        "book",
		RelatedName: "author",
		Records:     bookRecords(fixtureBooks),
		Key:         bookKey,
		Parent:      bookParent,
		Validators:  []Validator{reject},
	})
	if err != nil {
		t.Fatalf("Failed to create related field: %s", err.Error())
	}

	if _, err := f.Validate(Submission{{Value: "1", Parent: "1"}}); err != nil {
		t.Fatalf("Submission rejected: %s", err.Error())
	}
	if calls != 1 {
		t.Fatalf("Validator ran %d times (expected 1)", calls)
	}

	_, err = f.Validate(Submission{{Value: "3", Parent: "1"}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "book" || err.Error() != "Not this one." {
		t.Fatalf("Validator failure not reported for field: %v", err)
	}

	// inconsistent and empty selections never reach the validators
	calls = 0
	if _, err := f.Validate(Submission{{Value: "4", Parent: "1"}}); !errors.Is(err, ErrConsistency) {
		t.Fatalf("Inconsistent submission not rejected: %v", err)
	}
	if _, err := f.Validate(Submission{{Value: "", Parent: "1"}}); err != nil {
		t.Fatalf("Empty optional submission rejected: %v", err)
	}
	if calls != 0 {
		t.Fatal("Validator ran on a selection that failed the structural checks")
	}
}

func TestCleanWidget(t *testing.T) {
	single := newBookField(t, fixtureBooks, false)
	data := Values(url.Values{"author": {"1"}, "book": {"2"}})
	cleaned, err := single.Clean(single.Value(data))
	if err != nil {
		t.Fatalf("Failed to clean single value: %s", err.Error())
	}
	if b, ok := cleaned.(book); !ok || b.ID != 2 {
		t.Fatalf("Unexpected cleaned value: %+v", cleaned)
	}

	multi := newBookField(t, fixtureBooks, true)
	data = Values(url.Values{"author": {"2"}, "book": {"5", "4"}})
	cleaned, err = multi.Clean(multi.Value(data))
	if err != nil {
		t.Fatalf("Failed to clean multiple value: %s", err.Error())
	}
	books, ok := cleaned.([]book)
	if !ok || len(books) != 2 || books[0].ID != 5 || books[1].ID != 4 {
		t.Fatalf("Unexpected cleaned value: %+v", cleaned)
	}

	if _, err := multi.Clean("5"); !errors.Is(err, ErrMalformedValue) {
		t.Fatalf("Value of wrong type not rejected: %v", err)
	}
	if _, err := single.Clean(nil); !errors.Is(err, ErrRequired) {
		t.Fatalf("Missing value not rejected: %v", err)
	}
}

func TestRenderWidget(t *testing.T) {
	f := newBookField(t, fixtureBooks, false)

	out, err := f.Render("id_book", Submission{{Value: "5", Parent: "2"}}, false)
	if err != nil {
		t.Fatalf("Failed to render submission: %s", err.Error())
	}
	if !strings.Contains(string(out), `<option value="5" selected="selected" class="sub_2">`) {
		t.Fatalf("Submitted value not selected:\n%s", out)
	}

	out, err = f.Render("id_book", fixtureBooks[2], false)
	if err != nil {
		t.Fatalf("Failed to render record: %s", err.Error())
	}
	if !strings.Contains(string(out), `<option value="3" selected="selected" class="sub_1">`) {
		t.Fatalf("Record not selected:\n%s", out)
	}

	multi := newBookField(t, fixtureBooks, true)
	out, err = multi.Render("id_book", []book{fixtureBooks[0], fixtureBooks[1]}, false)
	if err != nil {
		t.Fatalf("Failed to render records: %s", err.Error())
	}
	if n := strings.Count(string(out), `selected="selected"`); n != 2 {
		t.Fatalf("Rendered %d selected options (expected 2):\n%s", n, out)
	}

	if _, err := f.Render("id_book", 42, false); err == nil {
		t.Fatal("Rendering a value of unknown type succeeded")
	}
}

func TestPrepareValue(t *testing.T) {
	f := newBookField(t, fixtureBooks, true)
	tuples := f.PrepareValue(fixtureBooks[3], fixtureBooks[0])
	exp := []OptionTuple{{Value: "4", Parent: "2"}, {Value: "1", Parent: "1"}}
	if len(tuples) != len(exp) {
		t.Fatalf("Unexpected tuples: %+v", tuples)
	}
	for idx := range exp {
		if tuples[idx] != exp[idx] {
			t.Fatalf("Unexpected tuple [%d]: %+v (expected %+v)", idx, tuples[idx], exp[idx])
		}
	}
}

// The scenario of the book selection demo: author 1 wrote books 1-3.
func TestBookSelectionScenario(t *testing.T) {
	single := newBookField(t, fixtureBooks, false)
	if _, err := single.Clean(single.Value(Values(url.Values{"author": {"1"}, "book": {"1"}}))); err != nil {
		t.Fatalf("Valid selection rejected: %s", err.Error())
	}
	_, err := single.Clean(single.Value(Values(url.Values{"author": {"1"}, "book": {"4"}})))
	if err == nil || err.Error() != "Value does not match author value." {
		t.Fatalf("Unexpected error for inconsistent selection: %v", err)
	}

	multi := newBookField(t, fixtureBooks, true)
	_, err = multi.Clean(multi.Value(Values(url.Values{"author": {"1"}, "book": {"1", "4"}})))
	if err == nil || err.Error() != "Select a valid choice. 4 is not one of the available choices." {
		t.Fatalf("Unexpected error for inconsistent multiple selection: %v", err)
	}
}
