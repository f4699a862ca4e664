package templates

// LogView template for listing the submissions of a session.
const LogView = `
{{define "content"}}
	<div class="repository file list">
		<div class="ui container">
			<p id="repo-desc">
			<span class="description">Submissions</span>
			</p>
			<table id="job-table" class="ui unstackable fixed single line table">
				<tbody>
					{{range $job := .}}
						<tr>
							<td class="name two wide">J{{$job.ID}}</td>
							<td class="name text bold four wide"><a href="/log/{{$job.ID}}">{{$job.Label}}</a></td>
							<td class="name four wide">{{$job.SubmitTime}}</td>
							<td class="name four wide">{{$job.EndTime}}</td>
							<td class="name four wide">{{if $job.Error}}{{$job.Error}}{{end}}</td>
						</tr>
					{{end}}
				</tbody>
			</table>
		</div>
	</div>
{{end}}
`
