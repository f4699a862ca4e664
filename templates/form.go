package templates

// Form renders the elements of a form.  Elements with a widget are rendered
// through the widget's markup, all others as plain inputs.
const Form = `
{{ define "content" }}
			<div class="cascadeform">
				<div class="ui middle very relaxed page grid">
					<div class="column">
						<form class="ui form" action="{{with .action}}{{.}}{{else}}/{{end}}" method="post">
							<h3 class="ui top attached header">
								{{with .form}}{{.Name}}{{else}}Selection form{{end}}
							</h3>
							{{with .form}}{{if .Description}}<p>{{.Description}}</p>{{end}}{{end}}
							<div class="ui attached segment">
								{{if .errors}}
									<div class="ui negative message">
										Please correct the errors below: {{range $idx, $name := .errors.Fields}}{{if $idx}}, {{end}}{{$name}}{{end}}
									</div>
								{{end}}
								{{with .elements}}
									{{range $idx, $elem := .}}
										<div class="inline {{if $elem.Required}}required{{end}} field {{if $elem.Errors}}error{{end}}">
											<label for="{{$elem.HTMLID}}">{{$elem.Label}}</label>
											{{if $elem.HTML}}
												{{$elem.HTML}}
											{{else if eq $elem.Type "textarea"}}
												<textarea id="{{$elem.HTMLID}}" name="{{$elem.Name}}" {{if $elem.Required}}required{{end}} {{if or $.readonly $elem.ReadOnly}}readonly{{end}}>{{$elem.Value}}</textarea>
											{{else if eq $elem.Type "select"}}
												<select id="{{$elem.HTMLID}}" name="{{$elem.Name}}" {{if $elem.Required}}required{{end}} {{if or $.readonly $elem.ReadOnly}}disabled{{end}}>
													{{range $elem.ValueList}}
														<option value="{{.}}" {{if eq . $elem.Value}}selected{{end}}>{{.}}</option>
													{{end}}
												</select>
											{{else}}
												<input id="{{$elem.HTMLID}}" name="{{$elem.Name}}" {{if $elem.Type}}type="{{$elem.Type}}"{{end}} value="{{$elem.Value}}" {{if $elem.Required}}required{{end}} {{if or $.readonly $elem.ReadOnly}}readonly{{end}}>
											{{end}}
											{{range $elem.Errors}}
												<span class="error">{{.}}</span>
											{{end}}
											<span class="help">{{$elem.Description}}</span>
										</div>
									{{end}}
								{{end}}
								{{if not .readonly}}
									<div class="inline field">
										<label></label>
										<button class="ui green button">Submit</button>
									</div>
								{{end}}
								{{if .submit_time}}
									<div>
										Submitted {{.submit_time}}
									</div>
									<div>
										{{if .end_time}}
											Finished {{.end_time}}
										{{else}}
											In queue
										{{end}}
									</div>
								{{end}}
								{{range .messages}}
									<div>
										{{.}}
									</div>
								{{end}}
								{{if .error}}
									<div class="ui negative message">
										{{.error}}
									</div>
								{{end}}
							</div>
						</form>
					</div>
				</div>
			</div>
{{ end }}
`
