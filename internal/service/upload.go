package service

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/inkwell/internal/domain"
)

// MaxUploadSize bounds a single image upload.
const MaxUploadSize = 10 << 20 // 10MB

// UploadTokenVerifier checks tokens embedded in locally signed upload URLs.
type UploadTokenVerifier interface {
	Verify(token, key string) (contentType string, err error)
}

// UploadService issues signed upload locations and, for the local backend,
// accepts the uploaded bytes.
type UploadService struct {
	presigner domain.Presigner
	verifier  UploadTokenVerifier // nil when uploads go straight to object storage
	files     domain.FileStore
	now       func() time.Time
}

// NewUploadService creates an UploadService. verifier and files are only
// needed when the presigner points at this server.
func NewUploadService(presigner domain.Presigner, verifier UploadTokenVerifier, files domain.FileStore) *UploadService {
	return &UploadService{presigner: presigner, verifier: verifier, files: files, now: time.Now}
}

// SignUpload returns a signed location for one image owned by userID.
func (s *UploadService) SignUpload(ctx context.Context, userID int64, filename, contentType string) (*domain.UploadTarget, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	mediaType, err := imageMediaType(contentType)
	if err != nil {
		return nil, err
	}

	target, err := s.presigner.PresignPut(ctx, s.storageKey(userID, filename, mediaType), mediaType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return target, nil
}

// Accept stores bytes PUT to a locally signed location.
func (s *UploadService) Accept(ctx context.Context, key, token, contentType string, data []byte) error {
	if s.verifier == nil || s.files == nil {
		return fmt.Errorf("%w: local uploads are disabled", domain.ErrNotFound)
	}

	signedType, err := s.verifier.Verify(token, key)
	if err != nil {
		return err
	}
	mediaType, err := imageMediaType(contentType)
	if err != nil {
		return err
	}
	if mediaType != signedType {
		return fmt.Errorf("%w: content type %q does not match signed %q", domain.ErrForbidden, mediaType, signedType)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}
	if len(data) > MaxUploadSize {
		return fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrFileTooLarge)
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") && sniffed != mediaType {
		return fmt.Errorf("%w: body looks like %s, not %s", domain.ErrInvalidInput, sniffed, mediaType)
	}

	if err := s.files.Save(ctx, &domain.StoredFile{Key: key, ContentType: mediaType, Data: data}); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// Open returns a locally stored image.
func (s *UploadService) Open(ctx context.Context, key string) (*domain.StoredFile, error) {
	if s.files == nil {
		return nil, domain.ErrNotFound
	}
	return s.files.Get(ctx, key)
}

// storageKey builds articles/<user>/<yyyy>/<mm>/<uuid><ext>.
func (s *UploadService) storageKey(userID int64, filename, mediaType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if !validExt(ext) {
		ext = ""
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	now := s.now().UTC()
	return path.Join(
		"articles",
		strconv.FormatInt(userID, 10),
		now.Format("2006"),
		now.Format("01"),
		uuid.NewString()+ext,
	)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func imageMediaType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: only image uploads are accepted", domain.ErrInvalidInput)
	}
	return mediaType, nil
}
