package templates

// Layout is the main site template. It includes the header and menu and
// embeds the content for every other page.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html>
	<head>
		<link rel="stylesheet" href="/assets/semantic-2.3.1.min.css">
		<link rel="stylesheet" href="/assets/custom.css">
		<title>{{ block "title" . }}Cascade{{ end }}</title>
	</head>
	<body>
		<div class="full height">
			<div class="following bar light">
				<div class="ui container">
					<div class="ui grid">
						<div class="column">
							<div class="ui top secondary menu">
								<a class="item" href="/">New</a>
								<a class="item" href="/log">Submissions</a>
							</div>
						</div>
					</div>
				</div>
			</div>
			{{ template "content" . }}
		</div>
	</body>
</html>
{{ end }}
`
