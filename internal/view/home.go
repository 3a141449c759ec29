package view

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/a-h/templ"

	"github.com/msomdec/inkwell/internal/service"
)

// HomePage lists the latest published articles. filter names the active
// category or tag, if any.
func HomePage(summaries []service.ArticleSummary, filter, viewerName string) templ.Component {
	return Layout("Latest articles", viewerName, render(func(buf *bytes.Buffer) {
		if filter != "" {
			fmt.Fprintf(buf, `<h1>Articles about %s</h1><p><a href="/">All articles</a></p>`, templ.EscapeString(filter))
		} else {
			buf.WriteString(`<h1>Latest articles</h1>`)
		}
		if len(summaries) == 0 {
			buf.WriteString(`<p class="empty">Nothing published yet.</p>`)
			return
		}

		buf.WriteString(`<ul class="article-list">`)
		for _, s := range summaries {
			href := "/articles/" + url.PathEscape(s.ID)
			buf.WriteString(`<li class="article-card">`)
			if s.ImageURL != "" {
				fmt.Fprintf(buf, `<img src="%s" alt="" loading="lazy">`, templ.EscapeString(string(templ.URL(s.ImageURL))))
			}
			fmt.Fprintf(buf, `<h2><a href="%s">%s</a></h2>`, href, templ.EscapeString(s.Title))
			fmt.Fprintf(buf, `<p class="byline">%s</p>`, templ.EscapeString(s.AuthorName))
			fmt.Fprintf(buf, `<p>%s</p>`, templ.EscapeString(s.Snippet))
			buf.WriteString(`</li>`)
		}
		buf.WriteString(`</ul>`)
	}))
}
