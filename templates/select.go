package templates

// Select holds the select widgets.  "options" renders dependent options one
// per line, with option groups opened and closed on lines of their own.
// "select" wraps rendered options in a select element, and "choiceselect"
// renders a plain select with a blank first option.
const Select = `{{define "options"}}{{range $idx, $line := .}}{{if $idx}}
{{end}}{{if $line.GroupStart}}<optgroup label="{{$line.Label}}">{{else if $line.GroupEnd}}</optgroup>{{else}}<option value="{{$line.Value}}"{{if $line.Selected}} selected="selected"{{end}} class="{{$line.Class}}">{{$line.Label}}</option>{{end}}{{end}}{{end}}
{{define "select"}}<select{{if .Multiple}} multiple="multiple"{{end}}{{if .Disabled}} disabled="disabled"{{end}} name="{{.Name}}" id="{{.ID}}">
{{if .Options}}{{.Options}}
{{end}}</select>
{{end}}
{{define "choiceselect"}}<select{{if .Disabled}} disabled="disabled"{{end}} name="{{.Name}}" id="{{.ID}}">
<option value="">{{.EmptyLabel}}</option>
{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected="selected"{{end}}>{{.Label}}</option>
{{end}}</select>{{end}}`
