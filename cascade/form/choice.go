package form

import (
	"bytes"
	"html/template"

	"github.com/G-Node/cascade/templates"
)

// StaticClass tags options that stay visible whatever the parent selection
// is, such as the blank placeholder.
const StaticClass = "static"

// DefaultEmptyLabel is the label of the blank placeholder option.
const DefaultEmptyLabel = "---------"

var (
	filterScript    = template.Must(template.New("filter").Parse(templates.FilterScript))
	widgetTemplates = template.Must(template.New("widgets").Parse(templates.Select))
)

// OptionTuple is a single selectable choice as it goes over the wire: the
// record's identifier and the identifier of its parent.  An empty Parent
// means the record has no parent.
type OptionTuple struct {
	Value  string
	Parent string
}

// Class returns the tag rendered on the option: "sub_<parent>", or
// StaticClass when there is no parent.
func (t OptionTuple) Class() string {
	if t.Parent == "" {
		return StaticClass
	}
	return "sub_" + t.Parent
}

// Equal compares two tuples with normalized identifiers.
func (t OptionTuple) Equal(o OptionTuple) bool {
	return SameID(t.Value, o.Value) && SameID(t.Parent, o.Parent)
}

// Submission is the decoded value of a dependent field: one pair in single
// mode, one pair per selected value in multiple mode.
type Submission []OptionTuple

// Values returns the submitted child identifiers in order.
func (s Submission) Values() []string {
	vals := make([]string, len(s))
	for idx := range s {
		vals[idx] = s[idx].Value
	}
	return vals
}

// Choice is an entry of a choice list.  When Group is non-nil the entry is
// an option group labelled Label and Option is ignored.
type Choice struct {
	Option OptionTuple
	Label  string
	Group  []Choice
}

// Encoder converts records to option tuples and renders them.  It holds no
// state besides its accessors and may be shared.
type Encoder[R any] struct {
	key      func(R) string
	parent   func(R) (string, bool)
	label    func(R) string
	multiple bool
}

// NewEncoder returns an Encoder using the given accessors.  A nil label
// falls back to the key.
func NewEncoder[R any](key func(R) string, parent func(R) (string, bool), label func(R) string, multiple bool) Encoder[R] {
	if label == nil {
		label = key
	}
	return Encoder[R]{key: key, parent: parent, label: label, multiple: multiple}
}

// Encode returns the option tuple of a record.
func (e Encoder[R]) Encode(r R) OptionTuple {
	t := OptionTuple{Value: e.key(r)}
	if parent, ok := e.parent(r); ok {
		t.Parent = parent
	}
	return t
}

// Choices returns one choice per record, preceded by a blank placeholder
// when emptyLabel is not empty.
func (e Encoder[R]) Choices(records []R, emptyLabel string) []Choice {
	choices := make([]Choice, 0, len(records)+1)
	if emptyLabel != "" {
		choices = append(choices, Choice{Label: emptyLabel})
	}
	for _, r := range records {
		choices = append(choices, Choice{Option: e.Encode(r), Label: e.label(r)})
	}
	return choices
}

// RenderOptions renders the option elements for choices, marking those
// whose tuple is in selected.
func (e Encoder[R]) RenderOptions(choices []Choice, selected []OptionTuple) template.HTML {
	return RenderOptions(choices, selected, e.multiple)
}

// RenderSelect renders the complete select element with id for the named
// field, followed by the script that filters its options whenever the
// parent select with relatedID changes.  A disabled select is rendered for
// display only.
func (e Encoder[R]) RenderSelect(name, id, relatedID string, choices []Choice, selected []OptionTuple, disabled bool) (template.HTML, error) {
	options, err := renderOptions(choices, selected, e.multiple)
	if err != nil {
		return "", err
	}
	b := new(bytes.Buffer)
	data := struct {
		Name, ID           string
		Multiple, Disabled bool
		Options            template.HTML
	}{name, id, e.multiple, disabled, options}
	if err := widgetTemplates.ExecuteTemplate(b, "select", data); err != nil {
		return "", err
	}
	script := struct{ Parent, Child string }{relatedID, id}
	if err := filterScript.Execute(b, script); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

// optionLine is one line of rendered options: an option, or the start or
// end of an option group.
type optionLine struct {
	Value, Class, Label  string
	Selected             bool
	GroupStart, GroupEnd bool
}

// RenderOptions renders choices as option elements, one per line.  Option
// groups are wrapped in optgroup elements.  In single mode (multiple false)
// at most one option is marked selected: the first option matching a
// selected tuple consumes it.
func RenderOptions(choices []Choice, selected []OptionTuple, multiple bool) template.HTML {
	out, err := renderOptions(choices, selected, multiple)
	if err != nil {
		// writes to a bytes.Buffer don't fail
		panic(err)
	}
	return out
}

func renderOptions(choices []Choice, selected []OptionTuple, multiple bool) (template.HTML, error) {
	// work on a copy; single mode consumes entries
	sel := make([]OptionTuple, len(selected))
	copy(sel, selected)
	lines := optionLines(choices, &sel, multiple, nil)
	b := new(bytes.Buffer)
	if err := widgetTemplates.ExecuteTemplate(b, "options", lines); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func optionLines(choices []Choice, selected *[]OptionTuple, multiple bool, lines []optionLine) []optionLine {
	for _, c := range choices {
		if c.Group != nil {
			lines = append(lines, optionLine{Label: c.Label, GroupStart: true})
			lines = optionLines(c.Group, selected, multiple, lines)
			lines = append(lines, optionLine{GroupEnd: true})
			continue
		}
		lines = append(lines, optionLine{
			Value:    c.Option.Value,
			Class:    c.Option.Class(),
			Label:    c.Label,
			Selected: takeSelected(c.Option, selected, multiple),
		})
	}
	return lines
}

// takeSelected reports whether t is in selected.  In single mode the match
// is removed from selected.
func takeSelected(t OptionTuple, selected *[]OptionTuple, multiple bool) bool {
	for idx, s := range *selected {
		if !s.Equal(t) {
			continue
		}
		if !multiple {
			sel := *selected
			*selected = append(sel[:idx:idx], sel[idx+1:]...)
		}
		return true
	}
	return false
}

// FormData is a submitted form payload.
type FormData interface {
	Get(key string) string
}

// ListData is a payload that supports retrieving every value of a repeated
// key.
type ListData interface {
	FormData
	List(key string) []string
}

// DecodeSubmission reads the dependent field name and its parent field
// relatedName from data.  In single mode the result holds exactly one pair.
// In multiple mode it holds one pair per value of name, each with the single
// value of relatedName, when data is a ListData; otherwise it falls back to
// the single pair.
func DecodeSubmission(data FormData, name, relatedName string, multiple bool) Submission {
	related := data.Get(relatedName)
	if multiple {
		if ld, ok := data.(ListData); ok {
			values := ld.List(name)
			sub := make(Submission, 0, len(values))
			for _, v := range values {
				sub = append(sub, OptionTuple{Value: v, Parent: related})
			}
			return sub
		}
	}
	return Submission{{Value: data.Get(name), Parent: related}}
}
