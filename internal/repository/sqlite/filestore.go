package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
)

// fileStore implements domain.FileStore using SQLite BLOBs.
type fileStore struct {
	db *sql.DB
}

// Save stores the file, replacing any previous bytes under the same key.
func (s *fileStore) Save(ctx context.Context, file *domain.StoredFile) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (storage_key, content_type, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (storage_key) DO UPDATE SET content_type = excluded.content_type, data = excluded.data, created_at = excluded.created_at`,
		file.Key, file.ContentType, file.Data, now,
	)
	if err != nil {
		return fmt.Errorf("save file blob: %w", err)
	}
	file.CreatedAt = now
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) (*domain.StoredFile, error) {
	f := &domain.StoredFile{Key: key}
	err := s.db.QueryRowContext(ctx,
		"SELECT content_type, data, created_at FROM file_blobs WHERE storage_key = ?", key,
	).Scan(&f.ContentType, &f.Data, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get file blob: %w", err)
	}
	return f, nil
}
