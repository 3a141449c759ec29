package view_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
)

func TestSafeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		notWant string
	}{
		{
			name:    "keeps formatting",
			content: `<p>Hello <strong>bold</strong></p>`,
			want:    `<strong>bold</strong>`,
		},
		{
			name:    "drops tracking attribute",
			content: `<p><img src="https://cdn.test/a.png" data-upload-id="t1"></p>`,
			want:    `src="https://cdn.test/a.png"`,
			notWant: "data-upload-id",
		},
		{
			name:    "neutralizes javascript links",
			content: `<p><a href="javascript:alert(1)">x</a></p>`,
			notWant: "javascript:",
		},
		{
			name:    "scripts become text",
			content: `<p>a</p><script>alert(1)</script>`,
			notWant: "<script>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := view.SafeContent(tc.content)
			if tc.want != "" && !strings.Contains(got, tc.want) {
				t.Fatalf("expected %q in %q", tc.want, got)
			}
			if tc.notWant != "" && strings.Contains(got, tc.notWant) {
				t.Fatalf("did not expect %q in %q", tc.notWant, got)
			}
		})
	}
}

func testArticle() *domain.Article {
	published := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	return &domain.Article{
		ID:          "abc",
		AuthorName:  "Ada <Admin>",
		Title:       "Hello & welcome",
		Content:     "<p>Body text</p>",
		Status:      domain.ArticleStatusPublished,
		Categories:  []string{"go"},
		CreatedAt:   published,
		PublishedAt: &published,
	}
}

func TestArticlePage_Anonymous(t *testing.T) {
	var buf bytes.Buffer
	err := view.ArticlePage(view.ArticlePageData{Article: testArticle()}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		"<title>Hello &amp; welcome | Inkwell</title>",
		"By Ada &lt;Admin&gt;",
		"Mar 4, 2026",
		`href="/?category=go"`,
		"<p>Body text</p>",
		`id="comment-thread"`,
		"No comments yet.",
		"Sign in to join the conversation.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	if strings.Contains(body, `id="comment-form"`) {
		t.Error("anonymous readers should not get a comment form")
	}
}

func TestArticlePage_SignedInWithThread(t *testing.T) {
	parent := int64(1)
	thread := []domain.Comment{{
		ID:         1,
		AuthorName: "Bob",
		Body:       "first\nline",
		Replies:    []domain.Comment{{ID: 2, ParentID: &parent, AuthorName: "Ada", Body: "<b>reply</b>"}},
	}}

	var buf bytes.Buffer
	data := view.ArticlePageData{Article: testArticle(), Comments: thread, ViewerName: "Reader"}
	if err := view.ArticlePage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		"Signed in as Reader",
		`id="comment-form"`,
		`@post('/articles/abc/comments')`,
		`id="comment-2"`,
		"first<br>line",
		"&lt;b&gt;reply&lt;/b&gt;",
		`data-on:click="$parentId = 1"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestArticlePage_DraftHasNoComments(t *testing.T) {
	a := testArticle()
	a.Status = domain.ArticleStatusDraft

	var buf bytes.Buffer
	if err := view.ArticlePage(view.ArticlePageData{Article: a, ViewerName: "Ada"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Draft") {
		t.Error("expected draft badge")
	}
	if strings.Contains(buf.String(), "comment-thread") {
		t.Error("drafts should not show comments")
	}
}

func TestHomePage(t *testing.T) {
	summaries := []service.ArticleSummary{{
		Article: domain.Article{ID: "a 1", Title: "First", AuthorName: "Ada", ImageURL: "https://cdn.test/c.png"},
		Snippet: "Short <text>",
	}}

	var buf bytes.Buffer
	if err := view.HomePage(summaries, "", "").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := buf.String()
	for _, want := range []string{`href="/articles/a%201"`, "Short &lt;text&gt;", `src="https://cdn.test/c.png"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}

	buf.Reset()
	if err := view.HomePage(nil, "go", "").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Articles about go") || !strings.Contains(buf.String(), "Nothing published yet.") {
		t.Fatalf("unexpected filtered empty page: %s", buf.String())
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	if err := view.ErrorPage(404, "Not Found", "No such article.").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "404 Not Found") {
		t.Fatalf("unexpected error page: %s", buf.String())
	}
}
