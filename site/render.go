package site

import (
	"bytes"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/statnotes/statnotes/pkg/errors"
)

// RenderHTML converts post markdown to HTML with the extensions the posts
// rely on: tables, fenced code blocks and heading anchors.
func RenderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · statnotes</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; }
img { max-width: 100%; }
code, pre { font-family: ui-monospace, monospace; background: #f5f5f5; }
pre { padding: 0.75rem; overflow-x: auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
.meta { color: #666; font-size: 0.9rem; }
</style>
</head>
<body>
<header><a href="/">statnotes</a></header>
<main>{{.Content}}</main>
</body>
</html>`

const indexHTML = `<h1>statnotes</h1>
<p>Notebooks on data analysis, in no particular order of rigour.</p>
<ul>
{{range .}}<li>
  <a href="/posts/{{.Slug}}">{{.Title}}</a>
  <span class="meta">{{.Date.Format "2 Jan 2006"}}</span>
  {{if .Summary}}<br><span class="meta">{{.Summary}}</span>{{end}}
</li>
{{end}}</ul>`

const postHeaderHTML = `<h1>{{.Title}}</h1>
<p class="meta">{{.Date.Format "2 January 2006"}}{{if .Tags}} · {{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}{{end}}</p>`

var (
	layoutTmpl     = template.Must(template.New("layout").Parse(layoutHTML))
	indexTmpl      = template.Must(template.New("index").Parse(indexHTML))
	postHeaderTmpl = template.Must(template.New("post").Parse(postHeaderHTML))
)

type page struct {
	Title   string
	Content template.HTML
}

func renderPage(title string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := layoutTmpl.Execute(&buf, page{Title: title, Content: template.HTML(content)})
	if err != nil {
		return nil, errors.Wrap(err, "rendering layout")
	}
	return buf.Bytes(), nil
}

// RenderIndex renders the post listing page.
func RenderIndex(posts []*Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, posts); err != nil {
		return nil, errors.Wrap(err, "rendering index")
	}
	return renderPage("Home", buf.Bytes())
}

// RenderPost renders one full post page.
func RenderPost(p *Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := postHeaderTmpl.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(err, "rendering post header")
	}
	buf.Write(RenderHTML(p.Body))
	return renderPage(p.Title, buf.Bytes())
}
