package view

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

const dateLayout = "Jan 2, 2006"

// ArticlePageData is everything the article page shows.
type ArticlePageData struct {
	Article    *domain.Article
	Comments   []domain.Comment // Assembled thread
	ViewerName string           // Empty for anonymous readers
}

// ArticlePage renders a single article with its comment thread.
func ArticlePage(data ArticlePageData) templ.Component {
	a := data.Article
	return Layout(a.Title, data.ViewerName, render(func(buf *bytes.Buffer) {
		buf.WriteString(`<article class="article">`)
		if a.ImageURL != "" {
			fmt.Fprintf(buf, `<img class="cover" src="%s" alt="">`, templ.EscapeString(string(templ.URL(a.ImageURL))))
		}
		fmt.Fprintf(buf, `<h1>%s</h1>`, templ.EscapeString(a.Title))
		writeByline(buf, a)
		if a.Status != domain.ArticleStatusPublished {
			buf.WriteString(`<p class="badge draft">Draft</p>`)
		}
		writeLabels(buf, "category", a.Categories)
		buf.WriteString(`<div class="article-body">`)
		buf.WriteString(SafeContent(a.Content))
		buf.WriteString(`</div>`)
		writeLabels(buf, "tag", a.Tags)
		buf.WriteString(`</article>`)

		if a.Status == domain.ArticleStatusPublished {
			writeComments(buf, a.ID, data.Comments, data.ViewerName != "")
		}
	}))
}

// SafeContent re-renders stored article HTML through the document model,
// so only supported blocks, marks and images reach the page. Link and image
// URLs with unsafe schemes are neutralized and tracking attributes dropped.
func SafeContent(content string) string {
	doc, err := document.ParseHTMLString(content)
	if err != nil {
		return `<p>` + templ.EscapeString(service.PlainText(content)) + `</p>`
	}
	nodes := doc.StripTracking().Nodes()
	for i := range nodes {
		if nodes[i].Marks.Link != "" {
			nodes[i].Marks.Link = string(templ.URL(nodes[i].Marks.Link))
		}
		if nodes[i].IsImage() {
			nodes[i].Src = string(templ.URL(nodes[i].Src))
		}
	}
	return document.New(nodes...).RenderHTML()
}

func writeByline(buf *bytes.Buffer, a *domain.Article) {
	date := a.CreatedAt
	if a.PublishedAt != nil {
		date = *a.PublishedAt
	}
	fmt.Fprintf(buf, `<p class="byline">By %s on <time datetime="%s">%s</time></p>`,
		templ.EscapeString(a.AuthorName), date.UTC().Format("2006-01-02"), date.Format(dateLayout))
}

func writeLabels(buf *bytes.Buffer, kind string, labels []string) {
	if len(labels) == 0 {
		return
	}
	fmt.Fprintf(buf, `<ul class="labels %ss">`, kind)
	for _, l := range labels {
		fmt.Fprintf(buf, `<li><a href="/?%s=%s">%s</a></li>`, kind, url.QueryEscape(l), templ.EscapeString(l))
	}
	buf.WriteString(`</ul>`)
}

func writeComments(buf *bytes.Buffer, articleID string, thread []domain.Comment, signedIn bool) {
	buf.WriteString(`<section class="comments"><h2>Comments</h2>`)
	buf.WriteString(`<div id="comment-thread">`)
	writeThread(buf, thread, signedIn)
	buf.WriteString(`</div>`)

	if !signedIn {
		buf.WriteString(`<p class="sign-in-hint">Sign in to join the conversation.</p></section>`)
		return
	}
	action := "/articles/" + url.PathEscape(articleID) + "/comments"
	fmt.Fprintf(buf, `<form id="comment-form" data-signals="{body: '', parentId: 0}" data-on:submit__prevent="@post('%s')">`,
		templ.EscapeString(action))
	buf.WriteString(`<p data-show="$parentId != 0">Replying <button type="button" data-on:click="$parentId = 0">cancel</button></p>`)
	fmt.Fprintf(buf, `<textarea name="body" maxlength="%d" data-bind:body required></textarea>`, service.MaxCommentLength)
	buf.WriteString(`<p id="comment-error" class="error" role="alert"></p>`)
	buf.WriteString(`<button type="submit">Post comment</button></form></section>`)
}

// CommentThread renders the inner content of the comment thread container.
func CommentThread(thread []domain.Comment, signedIn bool) templ.Component {
	return render(func(buf *bytes.Buffer) {
		writeThread(buf, thread, signedIn)
	})
}

// CommentError renders a message for the comment form.
func CommentError(message string) templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString(templ.EscapeString(message))
	})
}

func writeThread(buf *bytes.Buffer, thread []domain.Comment, signedIn bool) {
	if len(thread) == 0 {
		buf.WriteString(`<p class="empty">No comments yet.</p>`)
		return
	}
	writeCommentList(buf, thread, signedIn)
}

func writeCommentList(buf *bytes.Buffer, comments []domain.Comment, signedIn bool) {
	buf.WriteString(`<ol class="comment-list">`)
	for _, c := range comments {
		id := strconv.FormatInt(c.ID, 10)
		fmt.Fprintf(buf, `<li id="comment-%s" class="comment">`, id)
		fmt.Fprintf(buf, `<p class="meta"><strong>%s</strong> <time>%s</time></p>`,
			templ.EscapeString(c.AuthorName), c.CreatedAt.Format(dateLayout))
		fmt.Fprintf(buf, `<p class="body">%s</p>`,
			strings.ReplaceAll(templ.EscapeString(c.Body), "\n", "<br>"))
		if signedIn {
			fmt.Fprintf(buf, `<button type="button" class="reply" data-on:click="$parentId = %s">Reply</button>`, id)
		}
		if len(c.Replies) > 0 {
			writeCommentList(buf, c.Replies, signedIn)
		}
		buf.WriteString(`</li>`)
	}
	buf.WriteString(`</ol>`)
}
