// Package view renders the server-side HTML pages and fragments.
package view

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// render adapts a buffer-writing function into a templ.Component.
func render(fn func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fn(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Layout wraps body in the site chrome.
func Layout(title, viewerName string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var head bytes.Buffer
		head.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		head.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&head, `<title>%s | Inkwell</title>`, templ.EscapeString(title))
		fmt.Fprintf(&head, `<script type="module" src="%s"></script>`, datastarScript)
		head.WriteString(`</head><body><header class="site-header"><a href="/" class="brand">Inkwell</a>`)
		if viewerName != "" {
			fmt.Fprintf(&head, `<span class="viewer">Signed in as %s</span>`, templ.EscapeString(viewerName))
		}
		head.WriteString(`</header><main>`)
		if _, err := w.Write(head.Bytes()); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// ErrorPage renders a full page describing an HTTP error.
func ErrorPage(status int, title, message string) templ.Component {
	return Layout(title, "", render(func(buf *bytes.Buffer) {
		fmt.Fprintf(buf, `<section class="error-page"><h1>%d %s</h1><p>%s</p><a href="/">Back to articles</a></section>`,
			status, templ.EscapeString(title), templ.EscapeString(message))
	}))
}
