package editor

import (
	"github.com/msomdec/inkwell/internal/document"
)

// ReconciledContent is the persistable result of a fully successful save
// attempt.
type ReconciledContent struct {
	HTML            string
	PrimaryImageURL string // Empty when the document had no staged images
	Document        document.Document
	Resolved        map[string]string // temp id -> public URL
}

// Reconcile rewrites snapshot with the public URLs from outcomes. If any
// outcome failed it returns a *PartialUploadFailureError and nothing else.
// It never mutates its inputs, so running it again on the same outcomes, or
// on its own output document, gives byte-identical HTML.
func Reconcile(snapshot document.Document, outcomes []UploadOutcome) (*ReconciledContent, error) {
	var failures []UploadOutcome
	for _, o := range outcomes {
		if !o.Succeeded() {
			failures = append(failures, o)
		}
	}
	if len(failures) > 0 {
		return nil, &PartialUploadFailureError{
			Failed:   len(failures),
			Total:    len(outcomes),
			Failures: failures,
		}
	}

	resolved := make(map[string]string, len(outcomes))
	primary := ""
	for _, o := range outcomes {
		resolved[o.TempID] = o.PublicURL
		if primary == "" {
			primary = o.PublicURL
		}
	}

	doc := snapshot.Resolve(resolved)
	return &ReconciledContent{
		HTML:            doc.RenderHTML(),
		PrimaryImageURL: primary,
		Document:        doc,
		Resolved:        resolved,
	}, nil
}
