package form

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
)

// ChoiceField is a plain single select over an Enumerable, typically the
// parent field of a RelatedField.
type ChoiceField[R any] struct {
	name       string
	records    Enumerable[R]
	key        func(R) string
	label      func(R) string
	required   bool
	emptyLabel string
}

// NewChoiceField returns a ChoiceField for the named form field.  A nil label
// falls back to key.
func NewChoiceField[R any](name string, records Enumerable[R], key, label func(R) string, required bool) *ChoiceField[R] {
	if label == nil {
		label = key
	}
	return &ChoiceField[R]{
		name:       name,
		records:    records,
		key:        key,
		label:      label,
		required:   required,
		emptyLabel: DefaultEmptyLabel,
	}
}

// Name implements Widget.
func (f *ChoiceField[R]) Name() string {
	return f.name
}

// Value implements Widget.
func (f *ChoiceField[R]) Value(data FormData) interface{} {
	return data.Get(f.name)
}

// Clean implements Widget.  It returns the selected record, or nil when
// nothing was selected on a field that is not required.
func (f *ChoiceField[R]) Clean(value interface{}) (interface{}, error) {
	s, _ := value.(string)
	if s == "" {
		if f.required {
			return nil, requiredError(f.name)
		}
		return nil, nil
	}
	record, err := f.records.Get(s)
	if err != nil {
		if errors.Is(err, ErrNotFound) || isInvalidID(err) {
			return nil, invalidChoiceError(f.name, s)
		}
		return nil, err
	}
	return record, nil
}

// Render implements Widget.
func (f *ChoiceField[R]) Render(id string, value interface{}, readonly bool) (template.HTML, error) {
	var selected string
	switch v := value.(type) {
	case nil:
	case string:
		selected = v
	case R:
		selected = f.key(v)
	default:
		return "", fmt.Errorf("choice field %q: cannot render value of type %T", f.name, value)
	}
	records, err := f.records.Records()
	if err != nil {
		return "", err
	}

	type option struct {
		Value, Label string
		Selected     bool
	}
	options := make([]option, len(records))
	marked := false
	for idx, r := range records {
		key := f.key(r)
		options[idx] = option{Value: key, Label: f.label(r)}
		if !marked && selected != "" && SameID(key, selected) {
			options[idx].Selected = true
			marked = true
		}
	}
	data := struct {
		Name, ID, EmptyLabel string
		Disabled             bool
		Options              []option
	}{f.name, id, f.emptyLabel, readonly, options}

	b := new(bytes.Buffer)
	if err := widgetTemplates.ExecuteTemplate(b, "choiceselect", data); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
