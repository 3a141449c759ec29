package editor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/editor"
)

var form = editor.FormFields{
	Title:      "Hello",
	Status:     domain.ArticleStatusPublished,
	Categories: []string{"travel"},
	Tags:       []string{"go"},
	AuthorName: "Ada",
}

func typeText(t *testing.T, ed *editor.Editor, s string) {
	t.Helper()
	if err := ed.Apply(document.Edit{Pos: ed.Cursor(), Insert: []document.Node{document.Text(s)}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func insertImage(t *testing.T, ed *editor.Editor, name string) string {
	t.Helper()
	id, err := ed.InsertImage(pngFile(t, name))
	if err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	return id
}

func TestSave_DeletedImageIsNeverUploaded(t *testing.T) {
	store := &fakeStorage{}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Trip ")
	a := insertImage(t, ed, "a.png")
	b := insertImage(t, ed, "b.png")
	if a != "t1" || b != "t2" {
		t.Fatalf("expected t1, t2; got %s, %s", a, b)
	}

	pos, ok := ed.Document().FindTracked("t2")
	if !ok {
		t.Fatal("expected t2 in document")
	}
	if err := ed.Apply(document.Edit{Pos: pos, Delete: 1}); err != nil {
		t.Fatalf("delete image: %v", err)
	}

	id, err := ed.Save(context.Background(), form)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != "article-1" {
		t.Fatalf("expected article-1, got %s", id)
	}

	if diff := cmp.Diff([]string{"a.png"}, store.requestedNames()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}

	got := articles.creates[0]
	if strings.Count(got.Content, "<img") != 1 || !strings.Contains(got.Content, publicURL("a.png")) {
		t.Fatalf("unexpected content %s", got.Content)
	}
	if got.ImageURL == nil || *got.ImageURL != publicURL("a.png") {
		t.Fatalf("expected cover %s, got %v", publicURL("a.png"), got.ImageURL)
	}
	if got.Title != "Hello" || got.Status != "published" || got.AuthorName != "Ada" {
		t.Fatalf("form fields not forwarded: %+v", got)
	}
	if len(ed.Pending()) != 0 {
		t.Fatalf("expected empty registry, got %v", ed.Pending())
	}
	if len(ed.Document().TrackingIDs()) != 0 {
		t.Fatal("live document should hold permanent urls")
	}
}

func TestSave_AllImagesResolved(t *testing.T) {
	store := &fakeStorage{}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	names := []string{"a.png", "b.png", "c.png"}
	for _, name := range names {
		typeText(t, ed, "para ")
		insertImage(t, ed, name)
	}

	if _, err := ed.Save(context.Background(), form); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc := ed.LastReconciled()
	if strings.Contains(rc.HTML, document.TrackingAttr) {
		t.Fatalf("tracking attribute left in %s", rc.HTML)
	}
	for _, name := range names {
		if strings.Count(rc.HTML, publicURL(name)) != 1 {
			t.Fatalf("expected %s once in %s", publicURL(name), rc.HTML)
		}
	}
	if rc.PrimaryImageURL != publicURL("a.png") {
		t.Fatalf("expected first image as primary, got %s", rc.PrimaryImageURL)
	}
}

func TestSave_PartialFailureLeavesDocumentUntouched(t *testing.T) {
	store := &fakeStorage{failTransfer: map[string]bool{"b.png": true}}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Two pictures ")
	insertImage(t, ed, "a.png")
	insertImage(t, ed, "b.png")
	before := ed.Document().RenderHTML()

	_, err := ed.Save(context.Background(), form)
	if !errors.Is(err, domain.ErrPartialUploadFailure) {
		t.Fatalf("expected ErrPartialUploadFailure, got %v", err)
	}
	if err.Error() != "1 of 2 images failed to upload" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if after := ed.Document().RenderHTML(); after != before {
		t.Fatalf("document changed:\nbefore %s\nafter  %s", before, after)
	}
	if articles.calls() != 0 {
		t.Fatal("no article call expected")
	}
	pending := ed.Pending()
	if len(pending) != 2 || pending[0].TempID != "t1" || pending[1].TempID != "t2" {
		t.Fatalf("both uploads should remain staged, got %v", pending)
	}

	// Retry once storage recovers.
	store.mu.Lock()
	store.failTransfer = nil
	store.mu.Unlock()

	if _, err := ed.Save(context.Background(), form); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if articles.calls() != 1 {
		t.Fatalf("expected one article call, got %d", articles.calls())
	}
}

func TestSave_SubmissionFailureKeepsUploads(t *testing.T) {
	store := &fakeStorage{}
	articles := &fakeArticles{err: errors.New("firestore unavailable")}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Caption ")
	insertImage(t, ed, "a.png")

	_, err := ed.Save(context.Background(), form)
	if !errors.Is(err, domain.ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}
	if ed.LastReconciled() == nil {
		t.Fatal("reconciled content should be kept")
	}

	articles.mu.Lock()
	articles.err = nil
	articles.mu.Unlock()

	if _, err := ed.Save(context.Background(), form); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if n := len(store.requestedNames()); n != 1 {
		t.Fatalf("image should be uploaded once, got %d requests", n)
	}
	got := articles.creates[0]
	if got.ImageURL == nil || *got.ImageURL != publicURL("a.png") {
		t.Fatalf("cover should carry over to retry, got %v", got.ImageURL)
	}
}

func TestSave_UpdatesExistingArticle(t *testing.T) {
	store := &fakeStorage{}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	cover := "https://cdn.test/cover.png"
	html := `<p>Old text</p><p><img src="` + cover + `"/></p>`
	if err := ed.Load("abc", html, cover); err != nil {
		t.Fatalf("Load: %v", err)
	}
	typeText(t, ed, " more")

	id, err := ed.Save(context.Background(), form)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != "abc" {
		t.Fatalf("expected abc, got %s", id)
	}
	got, ok := articles.updates["abc"]
	if !ok {
		t.Fatal("expected an update call")
	}
	if got.ImageURL == nil || *got.ImageURL != cover {
		t.Fatalf("expected existing cover to carry over, got %v", got.ImageURL)
	}
	if len(store.requestedNames()) != 0 {
		t.Fatal("no uploads expected")
	}
}

func TestSave_RemovedCoverIsNotKept(t *testing.T) {
	articles := &fakeArticles{}
	ed := newTestEditor(t, &fakeStorage{}, articles)

	if err := ed.Load("abc", "<p>No pictures any more</p>", "https://cdn.test/gone.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := ed.Save(context.Background(), form); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := articles.updates["abc"].ImageURL; got != nil {
		t.Fatalf("expected no cover, got %s", *got)
	}
}

func TestSave_RejectsConcurrentSave(t *testing.T) {
	store := &fakeStorage{gate: make(chan struct{}), started: make(chan string, 1)}
	ed := newTestEditor(t, store, &fakeArticles{})

	typeText(t, ed, "Busy ")
	insertImage(t, ed, "a.png")

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background(), form)
		errc <- err
	}()
	<-store.started

	if !ed.Saving() {
		t.Fatal("expected a save in flight")
	}
	if _, err := ed.Save(context.Background(), form); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(store.gate)
	if err := <-errc; err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if ed.Saving() {
		t.Fatal("save flag should be cleared")
	}
}

func TestSave_AbandonDiscardsResults(t *testing.T) {
	store := &fakeStorage{gate: make(chan struct{}), started: make(chan string, 1)}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Leaving ")
	insertImage(t, ed, "a.png")
	before := ed.Document()

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background(), form)
		errc <- err
	}()
	<-store.started
	ed.Abandon()

	if err := <-errc; !errors.Is(err, domain.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !ed.Document().Equal(before) {
		t.Fatal("document should be untouched")
	}
	if len(ed.Pending()) != 1 || articles.calls() != 0 {
		t.Fatal("registry should be untouched and no article call made")
	}
}

func TestSave_LoadDuringSaveDiscardsResults(t *testing.T) {
	store := &fakeStorage{gate: make(chan struct{}), started: make(chan string, 1)}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Article A ")
	insertImage(t, ed, "a.png")

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background(), form)
		errc <- err
	}()
	<-store.started
	if err := ed.Load("article-B", "<p>B body</p>", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	close(store.gate)

	if err := <-errc; !errors.Is(err, domain.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if got := ed.ArticleID(); got != "article-B" {
		t.Fatalf("expected article-B, got %q", got)
	}
	doc := ed.Document()
	if !strings.Contains(doc.PlainText(), "B body") || strings.Contains(doc.PlainText(), "Article A") {
		t.Fatalf("expected the loaded article, got %q", doc.PlainText())
	}
	if len(doc.Images()) != 0 || ed.LastReconciled() != nil {
		t.Fatal("the abandoned save should leave no trace")
	}
	if articles.calls() != 0 {
		t.Fatal("no article call expected")
	}
}

func TestSave_EditsDuringSaveArePreserved(t *testing.T) {
	store := &fakeStorage{gate: make(chan struct{}), started: make(chan string, 1)}
	articles := &fakeArticles{}
	ed := newTestEditor(t, store, articles)

	typeText(t, ed, "Start ")
	insertImage(t, ed, "a.png")

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background(), form)
		errc <- err
	}()
	<-store.started
	typeText(t, ed, " typed later")
	close(store.gate)

	if err := <-errc; err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc := ed.Document()
	if !strings.HasSuffix(doc.PlainText(), " typed later") {
		t.Fatalf("later edit lost: %q", doc.PlainText())
	}
	if !doc.HasImageSrc(publicURL("a.png")) || len(doc.TrackingIDs()) != 0 {
		t.Fatal("image should be resolved in the live document")
	}
	if strings.Contains(articles.creates[0].Content, "typed later") {
		t.Fatal("the submitted snapshot should not include later edits")
	}
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, ed *editor.Editor)
		form  editor.FormFields
		want  error
	}{
		{
			name:  "missing title",
			setup: func(t *testing.T, ed *editor.Editor) { typeText(t, ed, "body") },
			form:  editor.FormFields{Status: "draft"},
			want:  domain.ErrInvalidInput,
		},
		{
			name:  "publishing an empty body",
			setup: func(t *testing.T, ed *editor.Editor) {},
			form:  editor.FormFields{Title: "T", Status: domain.ArticleStatusPublished},
			want:  domain.ErrInvalidInput,
		},
		{
			name:  "unknown status",
			setup: func(t *testing.T, ed *editor.Editor) { typeText(t, ed, "body") },
			form:  editor.FormFields{Title: "T", Status: "archived"},
			want:  domain.ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			articles := &fakeArticles{}
			ed := newTestEditor(t, &fakeStorage{}, articles)
			tc.setup(t, ed)
			if _, err := ed.Save(context.Background(), tc.form); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if articles.calls() != 0 {
				t.Fatal("no article call expected")
			}
		})
	}
}

func TestSave_ImageOnlyBodyDefaultsToDraft(t *testing.T) {
	articles := &fakeArticles{}
	ed := newTestEditor(t, &fakeStorage{}, articles)
	insertImage(t, ed, "a.png")

	if _, err := ed.Save(context.Background(), editor.FormFields{Title: "Pic"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := articles.creates[0].Status; got != domain.ArticleStatusDraft {
		t.Fatalf("expected draft, got %s", got)
	}
}

func TestSave_TitleOnlyDraft(t *testing.T) {
	articles := &fakeArticles{}
	ed := newTestEditor(t, &fakeStorage{}, articles)

	if _, err := ed.Save(context.Background(), editor.FormFields{Title: "Idea"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if articles.calls() != 1 || articles.creates[0].Status != domain.ArticleStatusDraft {
		t.Fatalf("expected one draft, got %+v", articles.creates)
	}
}

func TestAuthRequired(t *testing.T) {
	store := &fakeStorage{}
	ed := editor.NewEditor(editor.Config{
		Locations: store,
		Transfer:  store,
		Articles:  &fakeArticles{},
		Identity:  signedIn(false),
	})

	if _, err := ed.InsertImage(pngFile(t, "a.png")); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if len(ed.Pending()) != 0 {
		t.Fatal("nothing should be staged")
	}
	if _, err := ed.Save(context.Background(), form); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestApply_PasteWithoutSignInStagesNothing(t *testing.T) {
	store := &fakeStorage{}
	var warnings []error
	ed := editor.NewEditor(editor.Config{
		Locations: store,
		Transfer:  store,
		Articles:  &fakeArticles{},
		Identity:  signedIn(false),
		OnWarning: func(err error) { warnings = append(warnings, err) },
	})

	if err := ed.Apply(document.Edit{Pos: 0, Insert: []document.Node{document.Image(pastedSrc(t))}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	doc := ed.Document()
	if len(ed.Pending()) != 0 || len(doc.TrackingIDs()) != 0 {
		t.Fatal("nothing should be staged")
	}
	if len(doc.Images()) != 1 {
		t.Fatalf("pasted image should stay in place, got %d images", len(doc.Images()))
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], domain.ErrAuthRequired) {
		t.Fatalf("expected one ErrAuthRequired warning, got %v", warnings)
	}
}

func TestApply_PasteStagesExactlyOnce(t *testing.T) {
	ed := newTestEditor(t, &fakeStorage{}, &fakeArticles{})
	typeText(t, ed, "ab")

	src := pastedSrc(t)
	if err := ed.Apply(document.Edit{Pos: 1, Insert: []document.Node{document.Image(src)}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	doc := ed.Document()
	if diff := cmp.Diff([]string{"t1"}, doc.TrackingIDs()); diff != "" {
		t.Fatalf("tracking ids mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Images()) != 1 || len(ed.Pending()) != 1 {
		t.Fatalf("expected one image and one pending upload, got %d and %d", len(doc.Images()), len(ed.Pending()))
	}
	if pos, _ := doc.FindTracked("t1"); pos != 1 {
		t.Fatalf("expected placeholder at 1, got %d", pos)
	}
	if ed.Cursor() != 2 {
		t.Fatalf("expected cursor after image, got %d", ed.Cursor())
	}
}

func TestInsertImage_MovesCursorPastImage(t *testing.T) {
	ed := newTestEditor(t, &fakeStorage{}, &fakeArticles{})
	typeText(t, ed, "hello")
	if err := ed.SetCursor(2); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}

	insertImage(t, ed, "a.png")
	if ed.Cursor() != 3 {
		t.Fatalf("expected cursor 3, got %d", ed.Cursor())
	}
	if n, _ := ed.Document().NodeAt(2); n.TrackingID != "t1" {
		t.Fatalf("expected placeholder at 2, got %+v", n)
	}
	if err := ed.SetCursor(99); !errors.Is(err, document.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	partial := &editor.PartialUploadFailureError{Failed: 1, Total: 2}
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{partial, "1 of 2 images failed to upload. Your content is unchanged; try saving again."},
		{domain.ErrBusy, "A save is already in progress."},
		{&editor.SubmissionError{Err: errors.New("x")}, "The article could not be saved. Your images are uploaded; try saving again."},
		{errors.New("boom"), "Something went wrong. Please try again."},
	}
	for _, tc := range tests {
		if got := editor.UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
