package templates

// Fail shows an error page with a status code and message.
var Fail = `
{{ define "content" }}

<br><br>
<h1>{{ .StatusCode }}: {{ .StatusText }}</h1>
<div style="color: red; font-weight: bold">
{{ .Message }}
</div>

{{ end }}
`
