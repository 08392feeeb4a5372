// Package views renders the portfolio page and its HTMX fragments with gomponents.
package views

import (
	"embed"
	"strings"

	"github.com/srich3/portfolio/internal/content"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" //nolint:revive,stylecheck
)

// Assets holds the stylesheet, client script and resume served under /assets.
//
//go:embed assets
var Assets embed.FS

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Renderer turns page state into HTML. Every URL it emits is rooted at Base.
type Renderer struct {
	Site *content.Site
	Base string
}

func NewRenderer(site *content.Site, base string) Renderer {
	if base == "" {
		base = "/"
	}

	return Renderer{Site: site, Base: base}
}

// URL joins path onto the base path.
func (r Renderer) URL(path string) string {
	return r.Base + strings.TrimPrefix(path, "/")
}

func (r Renderer) document(title string, body ...g.Node) g.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), g.Attr("content", "width=device-width, initial-scale=1")),
				TitleEl(g.Text(title)),
				Link(Rel("stylesheet"), Href(r.URL("assets/site.css"))),
				Script(Src(htmxSrc)),
				Script(Src(r.URL("assets/site.js")), Defer()),
			),
			Body(body...),
		),
	)
}

func hx(name string, value string) g.Node {
	return g.Attr("hx-"+name, value)
}

func icon(name string) g.Node {
	return Span(Class("icon icon-"+name), Aria("hidden", "true"))
}

// classIf appends extra to base when on is set.
func classIf(base string, on bool, extra string) string {
	if !on {
		return base
	}

	return base + " " + extra
}

func externalLink(href string, children ...g.Node) g.Node {
	nodes := []g.Node{Href(href), Target("_blank"), Rel("noopener noreferrer")}

	return A(append(nodes, children...)...)
}
