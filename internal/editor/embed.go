package editor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
)

const (
	DefaultMaxFileSize  = 10 << 20 // 10MB
	DefaultPreviewWidth = 800
	previewQuality      = 80
)

// Embedder stages image files and inserts tracked placeholder nodes
// carrying a locally renderable preview.
type Embedder struct {
	registry     *Registry
	maxSize      int
	previewWidth int
}

func NewEmbedder(registry *Registry, maxSize, previewWidth int) *Embedder {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if previewWidth <= 0 {
		previewWidth = DefaultPreviewWidth
	}
	return &Embedder{registry: registry, maxSize: maxSize, previewWidth: previewWidth}
}

// EmbedAt validates f, stages it and inserts a placeholder at pos.
// Nothing is staged when an error is returned.
func (e *Embedder) EmbedAt(doc document.Document, pos int, f File) (document.Document, string, error) {
	if err := e.validate(f); err != nil {
		return doc, "", err
	}
	if pos < 0 || pos > doc.Len() {
		return doc, "", fmt.Errorf("embed at %d: %w", pos, document.ErrOutOfRange)
	}

	preview, err := e.preview(f)
	if err != nil {
		return doc, "", err
	}

	tempID := e.registry.Stage(f)
	next, err := doc.Insert(pos, document.Staged(preview, tempID))
	if err != nil {
		e.registry.Drop(tempID)
		return doc, "", fmt.Errorf("insert placeholder: %w", err)
	}
	return next, tempID, nil
}

func (e *Embedder) validate(f File) error {
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return fmt.Errorf("%w: %q is not an image type", domain.ErrInvalidInput, f.ContentType)
	}
	if f.Size() == 0 {
		return fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if f.Size() > e.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrFileTooLarge, f.Size(), e.maxSize)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err != nil {
		return fmt.Errorf("%w: unreadable image: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// preview returns a data URI for f. Images wider than the preview width
// are downscaled and re-encoded as JPEG; the staged bytes stay untouched.
func (e *Embedder) preview(f File) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if cfg.Width <= e.previewWidth {
		return dataURI(f.ContentType, f.Data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("%w: decode image: %v", domain.ErrInvalidInput, err)
	}
	bounds := img.Bounds()
	h := bounds.Dy() * e.previewWidth / bounds.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, e.previewWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return dataURI("image/jpeg", buf.Bytes()), nil
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
