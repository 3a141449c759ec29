// Package editor implements the article editor's deferred image pipeline:
// images are staged locally as placeholders, uploaded concurrently at save
// time, and reconciled into the document before the article is submitted.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
)

// ArticleSubmitter creates and updates articles.
type ArticleSubmitter interface {
	Create(ctx context.Context, input domain.ArticleInput) (string, error)
	Update(ctx context.Context, articleID string, input domain.ArticleInput) error
}

// Identity reports whether an author is signed in.
type Identity interface {
	SignedIn() bool
}

// FormFields is the article metadata edited next to the body.
type FormFields struct {
	Title            string
	ShortDescription string
	Status           string
	Categories       []string
	Tags             []string
	AuthorName       string
}

// Config wires an Editor to its collaborators. Locations, Transfer,
// Articles and Identity are required.
type Config struct {
	Locations LocationRequester
	Transfer  Transferer
	Articles  ArticleSubmitter
	Identity  Identity

	Registry     *Registry    // Defaults to a fresh registry
	Logger       *slog.Logger // Defaults to slog.Default()
	Concurrency  int          // Defaults to DefaultConcurrency; negative means unbounded
	MaxFileSize  int          // Defaults to DefaultMaxFileSize
	PreviewWidth int          // Defaults to DefaultPreviewWidth
	OnWarning    func(error)  // Receives non-fatal paste errors
}

// Editor holds one article under edit.
type Editor struct {
	cfg          Config
	registry     *Registry
	embedder     *Embedder
	interceptor  *Interceptor
	orchestrator *Orchestrator
	logger       *slog.Logger

	saving atomic.Bool

	mu        sync.Mutex
	doc       document.Document
	cursor    int
	articleID string
	cover     string
	last      *ReconciledContent
	cancel    context.CancelFunc
	loads     uint64 // bumped by Load; a save started before it is stale
}

func NewEditor(cfg Config) *Editor {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	switch {
	case cfg.Concurrency == 0:
		cfg.Concurrency = DefaultConcurrency
	case cfg.Concurrency < 0:
		cfg.Concurrency = 0
	}

	embedder := NewEmbedder(cfg.Registry, cfg.MaxFileSize, cfg.PreviewWidth)
	return &Editor{
		cfg:          cfg,
		registry:     cfg.Registry,
		embedder:     embedder,
		interceptor:  NewInterceptor(embedder, cfg.Logger, cfg.OnWarning),
		orchestrator: NewOrchestrator(cfg.Locations, cfg.Transfer, cfg.Concurrency, cfg.Logger),
		logger:       cfg.Logger,
		doc:          document.New(),
	}
}

// Load replaces the editor content with a stored article. An empty
// articleID starts a new article. A save in flight is canceled and its
// results are discarded.
func (e *Editor) Load(articleID, html, coverURL string) error {
	doc, err := document.ParseHTMLString(html)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	e.loads++
	for _, p := range e.registry.List() {
		e.registry.Drop(p.TempID)
	}
	e.doc = doc.StripTracking()
	e.cursor = e.doc.Len()
	e.articleID = articleID
	e.cover = coverURL
	e.last = nil
	return nil
}

func (e *Editor) Document() document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

func (e *Editor) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func (e *Editor) SetCursor(pos int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos < 0 || pos > e.doc.Len() {
		return fmt.Errorf("cursor %d: %w", pos, document.ErrOutOfRange)
	}
	e.cursor = pos
	return nil
}

func (e *Editor) ArticleID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.articleID
}

// Apply performs user edits in order. Inserted inline-data images are
// routed through the paste interceptor when an author is signed in;
// otherwise they stay untracked and ErrAuthRequired is reported as a
// warning. On error, edits applied so far are kept.
func (e *Editor) Apply(edits ...document.Edit) error {
	signedIn := e.signedIn()

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ed := range edits {
		next, err := e.doc.Apply(ed)
		if err != nil {
			return fmt.Errorf("apply edit: %w", err)
		}
		switch {
		case signedIn:
			next, _ = e.interceptor.Observe(next, ed.Insert)
		case insertsInlineData(ed.Insert):
			e.interceptor.warn(fmt.Errorf("stage pasted image: %w", domain.ErrAuthRequired))
		}
		e.doc = next

		e.cursor = ed.Pos
		for _, n := range ed.Insert {
			e.cursor += n.Len()
		}
		e.cursor = min(e.cursor, e.doc.Len())
	}
	return nil
}

// InsertImage embeds f at the cursor and moves the cursor past it.
func (e *Editor) InsertImage(f File) (string, error) {
	if !e.signedIn() {
		return "", domain.ErrAuthRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.cursor
	next, tempID, err := e.embedder.EmbedAt(e.doc, pos, f)
	if err != nil {
		return "", err
	}
	e.doc = next
	e.cursor = pos + 1
	return tempID, nil
}

// Pending lists staged uploads.
func (e *Editor) Pending() []PendingUpload {
	return e.registry.List()
}

// LastReconciled returns the content of the most recent successful
// reconciliation, or nil.
func (e *Editor) LastReconciled() *ReconciledContent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Abandon cancels an in-flight save. Uploads already running are left to
// finish but their results are discarded.
func (e *Editor) Abandon() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	return e.saving.Load()
}

// Save uploads staged images, reconciles the document and submits the
// article. Only one save runs at a time; a concurrent call gets ErrBusy.
// When any upload fails the live document and the registry are left as
// they were so the save can be retried.
func (e *Editor) Save(ctx context.Context, form FormFields) (string, error) {
	if !e.saving.CompareAndSwap(false, true) {
		return "", domain.ErrBusy
	}
	defer e.saving.Store(false)

	if !e.signedIn() {
		return "", domain.ErrAuthRequired
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.cancel = cancel
	loads := e.loads
	snapshot := e.doc
	staged := e.registry.List()
	articleID := e.articleID
	cover := e.cover
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
	}()

	if err := validateForm(form, snapshot); err != nil {
		return "", err
	}

	outcomes := e.orchestrator.UploadAll(ctx, snapshot, e.registry, staged)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCanceled, err)
	}

	rc, err := Reconcile(snapshot, outcomes)
	if err != nil {
		e.logger.Warn("save blocked by failed uploads", "error", err)
		return "", err
	}

	if rc.PrimaryImageURL == "" && cover != "" && rc.Document.HasImageSrc(cover) {
		rc.PrimaryImageURL = cover
	}

	e.mu.Lock()
	if err := e.staleLocked(ctx, loads); err != nil {
		e.mu.Unlock()
		return "", err
	}
	e.doc = e.doc.Resolve(rc.Resolved)
	for id := range rc.Resolved {
		e.registry.Drop(id)
	}
	e.last = rc
	if rc.PrimaryImageURL != "" {
		e.cover = rc.PrimaryImageURL
	}
	e.mu.Unlock()

	input := domain.ArticleInput{
		Title:            strings.TrimSpace(form.Title),
		Content:          rc.HTML,
		ShortDescription: strings.TrimSpace(form.ShortDescription),
		Status:           form.Status,
		Categories:       form.Categories,
		Tags:             form.Tags,
		AuthorName:       form.AuthorName,
	}
	if input.Status == "" {
		input.Status = domain.ArticleStatusDraft
	}
	if rc.PrimaryImageURL != "" {
		input.ImageURL = &rc.PrimaryImageURL
	}

	if articleID == "" {
		id, err := e.cfg.Articles.Create(ctx, input)
		if err != nil {
			return "", &SubmissionError{Err: err}
		}
		articleID = id
	} else if err := e.cfg.Articles.Update(ctx, articleID, input); err != nil {
		return "", &SubmissionError{Err: err}
	}

	e.mu.Lock()
	if e.loads == loads {
		e.articleID = articleID
	}
	e.mu.Unlock()

	e.logger.Info("article saved",
		"article_id", articleID,
		"images", len(outcomes),
		"status", input.Status,
	)
	return articleID, nil
}

// staleLocked reports ErrCanceled when ctx is done or another article was
// loaded since the save took its snapshot. e.mu must be held.
func (e *Editor) staleLocked(ctx context.Context, loads uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCanceled, err)
	}
	if e.loads != loads {
		return fmt.Errorf("%w: editor content was replaced", domain.ErrCanceled)
	}
	return nil
}

func insertsInlineData(nodes []document.Node) bool {
	for _, n := range nodes {
		if n.IsInlineData() && n.TrackingID == "" {
			return true
		}
	}
	return false
}

func (e *Editor) signedIn() bool {
	return e.cfg.Identity != nil && e.cfg.Identity.SignedIn()
}

func validateForm(form FormFields, doc document.Document) error {
	var problems []error
	if strings.TrimSpace(form.Title) == "" {
		problems = append(problems, errors.New("title is required"))
	}
	if form.Status == domain.ArticleStatusPublished && strings.TrimSpace(doc.PlainText()) == "" && len(doc.Images()) == 0 {
		problems = append(problems, errors.New("content is required to publish"))
	}
	switch form.Status {
	case "", domain.ArticleStatusDraft, domain.ArticleStatusPublished:
	default:
		problems = append(problems, fmt.Errorf("unknown status %q", form.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(problems...))
	}
	return nil
}
