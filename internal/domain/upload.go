package domain

import (
	"context"
	"time"
)

// UploadTarget is a short-lived, pre-authorized destination for one image.
// SignedURL accepts a single PUT of the bytes; PublicURL is where the
// stored image is served from afterwards.
type UploadTarget struct {
	Key       string    `json:"key,omitempty"`
	SignedURL string    `json:"signedUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Presigner issues upload targets for storage keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (*UploadTarget, error)
}

// StoredFile is a blob kept by a FileStore.
type StoredFile struct {
	Key         string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// FileStore abstracts raw file byte storage.
// The local implementation stores BLOBs in SQLite; S3-backed deployments
// never touch it because clients PUT straight to the bucket.
type FileStore interface {
	Save(ctx context.Context, file *StoredFile) error
	Get(ctx context.Context, key string) (*StoredFile, error)
}
