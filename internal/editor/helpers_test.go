package editor_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/editor"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngFile(t *testing.T, name string) editor.File {
	t.Helper()
	return editor.File{Name: name, ContentType: "image/png", Data: pngBytes(t, 4, 4)}
}

// sequentialIDs yields t1, t2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func publicURL(filename string) string {
	return "https://cdn.test/" + filename
}

// fakeStorage implements LocationRequester and Transferer. Requests for
// filenames in failLocation or failTransfer fail at that step.
type fakeStorage struct {
	mu           sync.Mutex
	requested    []string
	transferred  []string
	failLocation map[string]bool
	failTransfer map[string]bool

	inFlight    int
	maxInFlight int
	gate        chan struct{} // When set, Transfer waits for it to close
	started     chan string   // When set, receives each filename as its transfer starts
}

func (s *fakeStorage) RequestLocation(ctx context.Context, filename, contentType string) (*domain.UploadTarget, error) {
	s.mu.Lock()
	s.requested = append(s.requested, filename)
	fail := s.failLocation[filename]
	s.mu.Unlock()

	if fail {
		return nil, errors.New("sign endpoint returned 500")
	}
	return &domain.UploadTarget{
		SignedURL: "https://store.test/put/" + filename + "?sig=1",
		PublicURL: publicURL(filename),
	}, nil
}

func (s *fakeStorage) Transfer(ctx context.Context, signedURL, contentType string, data []byte) error {
	s.mu.Lock()
	s.transferred = append(s.transferred, signedURL)
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	gate, started := s.gate, s.started
	fail := false
	for name := range s.failTransfer {
		if signedURL == "https://store.test/put/"+name+"?sig=1" {
			fail = true
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if started != nil {
		started <- signedURL
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if fail {
		return errors.New("storage returned 403")
	}
	return nil
}

func (s *fakeStorage) requestedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}

type fakeArticles struct {
	mu      sync.Mutex
	creates []domain.ArticleInput
	updates map[string]domain.ArticleInput
	err     error
}

func (a *fakeArticles) Create(ctx context.Context, input domain.ArticleInput) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.creates = append(a.creates, input)
	return fmt.Sprintf("article-%d", len(a.creates)), nil
}

func (a *fakeArticles) Update(ctx context.Context, articleID string, input domain.ArticleInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.updates == nil {
		a.updates = make(map[string]domain.ArticleInput)
	}
	a.updates[articleID] = input
	return nil
}

func (a *fakeArticles) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.creates) + len(a.updates)
}

type signedIn bool

func (s signedIn) SignedIn() bool { return bool(s) }

func newTestEditor(t *testing.T, store *fakeStorage, articles *fakeArticles) *editor.Editor {
	t.Helper()
	return editor.NewEditor(editor.Config{
		Locations: store,
		Transfer:  store,
		Articles:  articles,
		Identity:  signedIn(true),
		Registry:  editor.NewRegistry(editor.WithIDGenerator(sequentialIDs())),
	})
}
