package form

import (
	"html/template"
	"net/url"
)

const (
	CheckboxInput ElementType = "checkbox"
	ColorInput    ElementType = "color"
	DateInput     ElementType = "date"
	DateTimeInput ElementType = "datetime-local"
	EmailInput    ElementType = "email"
	FileInput     ElementType = "file"
	HiddenInput   ElementType = "hidden"
	ImageInput    ElementType = "image"
	MonthInput    ElementType = "month"
	NumberInput   ElementType = "number"
	PasswordInput ElementType = "password"
	RadioInput    ElementType = "radio"
	RangeInput    ElementType = "range"
	SearchInput   ElementType = "search"
	TelInput      ElementType = "tel"
	TextInput     ElementType = "text"
	TimeInput     ElementType = "time"
	URLInput      ElementType = "url"
	WeekInput     ElementType = "week"
	TextArea      ElementType = "textarea"
	Select        ElementType = "select"
)

// ElementType defines the type of a form input element:
// https://developer.mozilla.org/en-US/docs/Web/HTML/Element/input
type ElementType string

// Form is the top level type for defining the web form for user input.
type Form struct {
	// The Name appears at the top of all pages in the form and in the HTML
	// title.
	Name string
	// The Description appears under the Name on every page.
	Description string
	// Each Page creates a form page with the included elements.  The last page
	// contains the submit button.
	Pages []Page
}

// Page represents a single page of a multi-page web form.
type Page struct {
	// The Description appears under the form description.  Use it to provide
	// information about the elements of the specific page.
	Description string
	// Each element creates an input field on the form.
	Elements []Element
}

// Element represents a single form element (field).
type Element struct {
	// ID of the element.  Must be unique.
	ID string
	// Name of the element.  Used as key to retrieve the value on submission.
	Name string
	// The Label of the field as it appears on the rendered form.
	Label string
	// If set, the field will be filled with the given value, or the
	// appropriate option will be selected, when rendered.
	Value string
	// Whether the element represents a required form field.
	Required bool
	// An optional description for the field.  If set will be displayed under
	// the input field.  Can be used to provide extra information such as input
	// constraints.
	Description string
	// Type is the HTML input element type.
	Type ElementType
	// ValueList should contain a set of values that represent the permissible
	// or recommended options available to the element.  For input type
	// elements, it represents suggested values (datalist).  For select
	// elements, it represents the values in the list.
	ValueList []string
	// Read only fields can't be edited.
	ReadOnly bool
	// Widget, if set, renders the element and cleans its submitted value
	// instead of the plain input of the given Type.  The widget's name must
	// match Name.
	Widget Widget
}

// Widget is a form element that renders itself and validates the value it
// decodes from a submitted form.
type Widget interface {
	// Name of the form field.
	Name() string
	// Value decodes the raw value of the field from a submitted payload.
	Value(data FormData) interface{}
	// Clean validates a raw value and returns the cleaned value.
	Clean(value interface{}) (interface{}, error)
	// Render the element with the given DOM id.  The value is either a raw
	// value returned from Value or a cleaned value returned from Clean.  A
	// readonly element is rendered disabled.
	Render(id string, value interface{}, readonly bool) (template.HTML, error)
}

// HTMLID returns the DOM id of the element.
func (elem Element) HTMLID() string {
	return ElementID(elem.Name, elem.ID)
}

// ElementID returns id, or the default DOM id for the named field when id is
// empty.
func ElementID(name, id string) string {
	if id != "" {
		return id
	}
	return "id_" + name
}

// Elements returns the elements of all pages of the form in order.
func (f Form) Elements() []Element {
	var elements []Element
	for _, page := range f.Pages {
		elements = append(elements, page.Elements...)
	}
	return elements
}

// Values adapts submitted form values to ListData.
type Values url.Values

// Get returns the first value for key.
func (v Values) Get(key string) string {
	return url.Values(v).Get(key)
}

// List returns all values for key.
func (v Values) List(key string) []string {
	return v[key]
}

// SingleValues holds one value per key, such as a stored submission.  It
// does not support repeated keys.
type SingleValues map[string]string

// Get returns the value for key.
func (v SingleValues) Get(key string) string {
	return v[key]
}
