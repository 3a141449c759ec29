package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msomdec/inkwell/internal/document"
	"github.com/msomdec/inkwell/internal/domain"
)

// DefaultConcurrency caps simultaneous uploads per save.
const DefaultConcurrency = 4

// LocationRequester obtains a signed upload location for one file.
type LocationRequester interface {
	RequestLocation(ctx context.Context, filename, contentType string) (*domain.UploadTarget, error)
}

// Transferer sends file bytes to a signed location.
type Transferer interface {
	Transfer(ctx context.Context, signedURL, contentType string, data []byte) error
}

type UploadStatus string

const (
	UploadSucceeded UploadStatus = "succeeded"
	UploadFailed    UploadStatus = "failed"
)

// UploadOutcome is the settled result of one upload. PublicURL is set only
// on success, Err only on failure.
type UploadOutcome struct {
	TempID    string
	Status    UploadStatus
	PublicURL string
	Err       error
}

func (o UploadOutcome) Succeeded() bool {
	return o.Status == UploadSucceeded
}

// Orchestrator uploads every staged image still referenced by a document.
type Orchestrator struct {
	locations   LocationRequester
	transfer    Transferer
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A concurrency of 0 or less
// leaves the number of simultaneous uploads unbounded.
func NewOrchestrator(locations LocationRequester, transfer Transferer, concurrency int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		locations:   locations,
		transfer:    transfer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// UploadAll drops the staged entries the snapshot no longer references,
// then uploads the rest concurrently. staged is the registry content taken
// together with the snapshot; entries staged later are never dropped.
// Every upload settles on its own; one failure never cancels the others.
// Outcomes follow document order.
func (o *Orchestrator) UploadAll(ctx context.Context, snapshot document.Document, reg *Registry, staged []PendingUpload) []UploadOutcome {
	live := snapshot.TrackingIDs()
	liveSet := make(map[string]struct{}, len(live))
	for _, id := range live {
		liveSet[id] = struct{}{}
	}

	for _, p := range staged {
		if _, ok := liveSet[p.TempID]; ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		reg.Drop(p.TempID)
		o.logger.Debug("dropped deleted image", "temp_id", p.TempID)
	}

	outcomes := make([]UploadOutcome, len(live))
	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	for i, id := range live {
		f, ok := reg.Get(id)
		if !ok {
			outcomes[i] = failed(id, fmt.Errorf("%w: no staged file for %s", domain.ErrNotFound, id))
			continue
		}
		g.Go(func() error {
			outcomes[i] = o.upload(ctx, id, f)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (o *Orchestrator) upload(ctx context.Context, tempID string, f File) UploadOutcome {
	if err := ctx.Err(); err != nil {
		return failed(tempID, fmt.Errorf("%w: %w", domain.ErrCanceled, err))
	}

	start := time.Now()
	target, err := o.locations.RequestLocation(ctx, f.Name, f.ContentType)
	if err != nil {
		return o.fail(ctx, tempID, domain.ErrSignedLocation, err)
	}
	if target == nil || target.SignedURL == "" || target.PublicURL == "" {
		return o.fail(ctx, tempID, domain.ErrSignedLocation, errors.New("incomplete upload location"))
	}
	if err := ctx.Err(); err != nil {
		return failed(tempID, fmt.Errorf("%w: %w", domain.ErrCanceled, err))
	}

	if err := o.transfer.Transfer(ctx, target.SignedURL, f.ContentType, f.Data); err != nil {
		return o.fail(ctx, tempID, domain.ErrTransfer, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(tempID, fmt.Errorf("%w: %w", domain.ErrCanceled, err))
	}

	o.logger.Info("image uploaded",
		"temp_id", tempID,
		"size", f.Size(),
		"duration", time.Since(start),
	)
	return UploadOutcome{TempID: tempID, Status: UploadSucceeded, PublicURL: target.PublicURL}
}

func (o *Orchestrator) fail(ctx context.Context, tempID string, kind, err error) UploadOutcome {
	if ctx.Err() != nil {
		return failed(tempID, fmt.Errorf("%w: %w", domain.ErrCanceled, err))
	}
	o.logger.Warn("image upload failed", "temp_id", tempID, "error", err)
	return failed(tempID, fmt.Errorf("%w: %w", kind, err))
}

func failed(tempID string, err error) UploadOutcome {
	return UploadOutcome{TempID: tempID, Status: UploadFailed, Err: err}
}
