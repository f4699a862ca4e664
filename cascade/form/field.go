package form

import (
	"errors"
	"fmt"
	"html/template"
)

// Validator checks a raw submission after the structural checks of a field
// have passed.
type Validator interface {
	Validate(sub Submission) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(sub Submission) error

func (f ValidatorFunc) Validate(sub Submission) error {
	return f(sub)
}

// MaxChoices limits the number of values of a multiple selection.
func MaxChoices(n int) Validator {
	return ValidatorFunc(func(sub Submission) error {
		if len(sub) > n {
			return &ValidationError{
				Kind:    ErrMalformedValue,
				Message: fmt.Sprintf("Select at most %d choices.", n),
			}
		}
		return nil
	})
}

// Config holds the configuration of a RelatedField.
type Config[R any] struct {
	// Name of the field in the form.
	Name string
	// RelatedName is the name of the parent field in the same form.
	RelatedName string
	// RelatedID is the DOM id of the parent select.  Defaults to
	// ElementID(RelatedName, "").
	RelatedID string
	// Records are the candidates for the field.
	Records Enumerable[R]
	// Key returns the identifier of a record, as used by Records for
	// lookups.  Use an alternate field here (and an enumerable keyed on it)
	// instead of the primary key if required.
	Key func(R) string
	// Parent returns the identifier of the record's parent, and false if it
	// has none.
	Parent func(R) (string, bool)
	// Label is the text of the record's option.  Defaults to Key.
	Label    func(R) string
	Required bool
	// Multiple selects the multi-select variant.
	Multiple bool
	// Validators run on the raw submission once the selection resolved to
	// records of the parent.
	Validators []Validator
	// EmptyLabel is the label of the blank placeholder option.  Defaults to
	// DefaultEmptyLabel unless NoEmptyLabel is set.
	EmptyLabel   string
	NoEmptyLabel bool
}

// RelatedField is a choice field whose valid values depend on the value of
// another (parent) field of the same form.  On validation the resolved
// record's actual parent must match the submitted parent value.
type RelatedField[R any] struct {
	cfg Config[R]
	enc Encoder[R]
}

// NewRelatedField returns a RelatedField for the given configuration.
func NewRelatedField[R any](cfg Config[R]) (*RelatedField[R], error) {
	switch {
	case cfg.Name == "":
		return nil, fmt.Errorf("related field: empty name")
	case cfg.RelatedName == "":
		return nil, fmt.Errorf("related field %q: empty related field name", cfg.Name)
	case cfg.Records == nil:
		return nil, fmt.Errorf("related field %q: nil records", cfg.Name)
	case cfg.Key == nil || cfg.Parent == nil:
		return nil, fmt.Errorf("related field %q: key and parent accessors are required", cfg.Name)
	}
	cfg.RelatedID = ElementID(cfg.RelatedName, cfg.RelatedID)
	if cfg.EmptyLabel == "" {
		cfg.EmptyLabel = DefaultEmptyLabel
	}
	if cfg.NoEmptyLabel {
		cfg.EmptyLabel = ""
	}
	validators := make([]Validator, len(cfg.Validators))
	copy(validators, cfg.Validators)
	cfg.Validators = validators
	f := &RelatedField[R]{
		cfg: cfg,
		enc: NewEncoder(cfg.Key, cfg.Parent, cfg.Label, cfg.Multiple),
	}
	return f, nil
}

// Name returns the name of the field.
func (f *RelatedField[R]) Name() string {
	return f.cfg.Name
}

// Decode reads the field's submission from a form payload.
func (f *RelatedField[R]) Decode(data FormData) Submission {
	return DecodeSubmission(data, f.cfg.Name, f.cfg.RelatedName, f.cfg.Multiple)
}

// Validate resolves a single-select submission and checks it against the
// submitted parent value, then runs the validators.  A submission with an
// empty value on a field that is not required yields the zero record.
func (f *RelatedField[R]) Validate(sub Submission) (R, error) {
	var zero R
	if len(sub) != 1 {
		return zero, listError(f.cfg.Name)
	}
	value, related := sub[0].Value, sub[0].Parent
	if value == "" {
		if f.cfg.Required {
			return zero, requiredError(f.cfg.Name)
		}
		return zero, nil
	}

	record, err := f.cfg.Records.Get(value)
	if err != nil {
		if errors.Is(err, ErrNotFound) || isInvalidID(err) {
			return zero, invalidChoiceError(f.cfg.Name, value)
		}
		return zero, err
	}

	actual, _ := f.cfg.Parent(record)
	if !SameID(related, actual) {
		return zero, consistencyError(f.cfg.Name, value, f.cfg.RelatedName)
	}
	if err := f.runValidators(sub); err != nil {
		return zero, err
	}
	return record, nil
}

// ValidateMultiple resolves a multi-select submission.  Existence and
// consistency are checked together: every submitted (value, parent) pair
// must be the (identifier, parent) pair of a candidate record.  Records are
// returned in submission order, each once.
func (f *RelatedField[R]) ValidateMultiple(sub Submission) ([]R, error) {
	if len(sub) == 0 {
		if f.cfg.Required {
			return nil, requiredError(f.cfg.Name)
		}
		return []R{}, nil
	}
	for idx := range sub {
		if !SameID(sub[idx].Parent, sub[0].Parent) {
			return nil, listError(f.cfg.Name)
		}
	}

	if checker, ok := f.cfg.Records.(IDChecker); ok {
		for _, t := range sub {
			if err := checker.CheckID(t.Value); err != nil {
				return nil, invalidPrimaryKeyError(f.cfg.Name, t.Value)
			}
		}
	}

	records, err := f.cfg.Records.In(sub.Values())
	if err != nil {
		var iderr *InvalidIDError
		if errors.As(err, &iderr) {
			return nil, invalidPrimaryKeyError(f.cfg.Name, iderr.ID)
		}
		return nil, err
	}

	resolved := make(map[OptionTuple]R, len(records))
	for _, r := range records {
		t := f.enc.Encode(r)
		resolved[normalizeTuple(t)] = r
	}

	result := make([]R, 0, len(sub))
	seen := make(map[OptionTuple]bool, len(sub))
	for _, t := range sub {
		nt := normalizeTuple(t)
		r, ok := resolved[nt]
		if !ok {
			return nil, invalidChoiceError(f.cfg.Name, t.Value)
		}
		if !seen[nt] {
			seen[nt] = true
			result = append(result, r)
		}
	}

	if err := f.runValidators(sub); err != nil {
		return nil, err
	}
	return result, nil
}

// runValidators runs the configured validators on a submission that passed
// the structural checks.  Failures without a field are attributed to this
// field.
func (f *RelatedField[R]) runValidators(sub Submission) error {
	for _, v := range f.cfg.Validators {
		if err := v.Validate(sub); err != nil {
			if verr, ok := err.(*ValidationError); ok && verr.Field == "" {
				verr.Field = f.cfg.Name
			}
			return err
		}
	}
	return nil
}

// PrepareValue encodes resolved records for display, so that a bound form
// selects them again.
func (f *RelatedField[R]) PrepareValue(records ...R) []OptionTuple {
	tuples := make([]OptionTuple, len(records))
	for idx, r := range records {
		tuples[idx] = f.enc.Encode(r)
	}
	return tuples
}

// Choices returns the choice list for the field's current candidates.
func (f *RelatedField[R]) Choices() ([]Choice, error) {
	records, err := f.cfg.Records.Records()
	if err != nil {
		return nil, err
	}
	return f.enc.Choices(records, f.cfg.EmptyLabel), nil
}

// Value implements Widget.
func (f *RelatedField[R]) Value(data FormData) interface{} {
	return f.Decode(data)
}

// Clean implements Widget.  It accepts a Submission and returns an R in
// single mode or an []R in multiple mode.  An empty single selection on a
// field that is not required returns nil.
func (f *RelatedField[R]) Clean(value interface{}) (interface{}, error) {
	var sub Submission
	switch v := value.(type) {
	case Submission:
		sub = v
	case nil:
	default:
		return nil, listError(f.cfg.Name)
	}
	if f.cfg.Multiple {
		return f.ValidateMultiple(sub)
	}
	if sub == nil {
		sub = Submission{{}}
	}
	record, err := f.Validate(sub)
	if err != nil {
		return nil, err
	}
	if sub[0].Value == "" {
		return nil, nil
	}
	return record, nil
}

// Render implements Widget.  value may be a raw Submission, a resolved
// record, a slice of resolved records or nil.
func (f *RelatedField[R]) Render(id string, value interface{}, readonly bool) (template.HTML, error) {
	var selected []OptionTuple
	switch v := value.(type) {
	case nil:
	case Submission:
		selected = v
	case []OptionTuple:
		selected = v
	case R:
		selected = f.PrepareValue(v)
	case []R:
		selected = f.PrepareValue(v...)
	default:
		return "", fmt.Errorf("related field %q: cannot render value of type %T", f.cfg.Name, value)
	}
	choices, err := f.Choices()
	if err != nil {
		return "", err
	}
	return f.enc.RenderSelect(f.cfg.Name, id, f.cfg.RelatedID, choices, selected, readonly)
}

func normalizeTuple(t OptionTuple) OptionTuple {
	return OptionTuple{Value: normalizeID(t.Value), Parent: normalizeID(t.Parent)}
}
