package site

import (
	"html/template"
	"io"
	"path"
	"strings"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Site}}</title>
<style>
body { font-family: sans-serif; max-width: 72rem; margin: 2rem auto; padding: 0 1rem; }
table.directive-table { width: 100%; border-collapse: collapse; table-layout: fixed; }
table.directive-table td { vertical-align: top; padding: 0.5rem; }
pre.literal-block { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
div.graphviz svg, div.graphviz img { max-width: 100%; height: auto; }
</style>
</head>
<body>
<nav><a href="{{.Root}}index.html">{{.Site}}</a></nav>
<main>
{{.Body}}
</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Site}}</title>
</head>
<body>
<h1>{{.Site}}</h1>
<ul>
{{- range .Pages}}
<li><a href="{{.Output}}">{{.Title}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type pageData struct {
	Site  string
	Title string
	Root  string
	Body  template.HTML
}

func writePage(w io.Writer, site string, p *Page, body []byte) error {
	return pageTemplate.Execute(w, pageData{
		Site:  site,
		Title: p.Title,
		Root:  rootPrefix(p.Output),
		Body:  template.HTML(body),
	})
}

func writeIndex(w io.Writer, site string, pages []*Page) error {
	return indexTemplate.Execute(w, struct {
		Site  string
		Pages []*Page
	}{site, pages})
}

// rootPrefix returns the relative path from the directory of rel back to
// the output root: "a/b/c.html" gives "../../".
func rootPrefix(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return strings.Repeat("../", strings.Count(dir, "/")+1)
}
