package editor

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"strings"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
)

// Interceptor replaces untracked inline-data images introduced by paste or
// drop with staged placeholders.
type Interceptor struct {
	embedder  *Embedder
	logger    *slog.Logger
	onWarning func(error)
}

func NewInterceptor(embedder *Embedder, logger *slog.Logger, onWarning func(error)) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{embedder: embedder, logger: logger, onWarning: onWarning}
}

// Observe inspects nodes that an edit just inserted. Each inserted image
// with an inline data source and no tracking id is staged and swapped for
// a tracked placeholder at the same position. Nodes that already carry a
// tracking id are skipped, so observing the same batch twice stages nothing
// new. Undecodable images are reported and left in place.
func (ic *Interceptor) Observe(doc document.Document, inserted []document.Node) (document.Document, []string) {
	var staged []string
	for _, n := range inserted {
		if !n.IsInlineData() || n.TrackingID != "" {
			continue
		}

		at, ok := doc.FindUntracked(n.Src)
		if !ok {
			continue
		}

		f, err := decodeDataURI(n.Src)
		if err != nil {
			ic.warn(err)
			continue
		}

		next, tempID, err := ic.embedder.EmbedAt(doc, at, f)
		if err != nil {
			ic.warn(fmt.Errorf("stage pasted image: %w", err))
			continue
		}

		// The placeholder shifted the original; find it again from the start.
		orig, ok := next.FindUntracked(n.Src)
		if !ok {
			ic.embedder.registry.Drop(tempID)
			continue
		}
		next, err = next.Delete(orig, 1)
		if err != nil {
			ic.embedder.registry.Drop(tempID)
			ic.warn(fmt.Errorf("remove pasted image: %w", err))
			continue
		}

		doc = next
		staged = append(staged, tempID)
		ic.logger.Debug("pasted image staged", "temp_id", tempID, "size", f.Size())
	}
	return doc, staged
}

func (ic *Interceptor) warn(err error) {
	ic.logger.Warn("paste interception failed", "error", err)
	if ic.onWarning != nil {
		ic.onWarning(err)
	}
}

// decodeDataURI reconstructs a file from an RFC 2397 data URI.
func decodeDataURI(uri string) (File, error) {
	rest, ok := cutPrefixFold(uri, "data:")
	if !ok {
		return File{}, fmt.Errorf("%w: not a data URI", domain.ErrMalformedPasteData)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return File{}, fmt.Errorf("%w: missing payload separator", domain.ErrMalformedPasteData)
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	if meta == "" {
		meta = "text/plain"
	}
	mediaType, _, err := mime.ParseMediaType(meta)
	if err != nil {
		return File{}, fmt.Errorf("%w: media type: %v", domain.ErrMalformedPasteData, err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return File{}, fmt.Errorf("%w: %q is not an image", domain.ErrMalformedPasteData, mediaType)
	}

	var data []byte
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return File{}, fmt.Errorf("%w: payload: %v", domain.ErrMalformedPasteData, err)
	}
	if len(data) == 0 {
		return File{}, fmt.Errorf("%w: empty payload", domain.ErrMalformedPasteData)
	}

	return File{
		Name:        "pasted-image" + extensionFor(mediaType),
		ContentType: mediaType,
		Data:        data,
	}, nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	if sub, ok := strings.CutPrefix(mediaType, "image/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
