package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/msomdec/inkwell/internal/domain"
)

// UploadClient requests signed upload locations and transfers image bytes.
type UploadClient struct {
	base
}

func NewUploadClient(baseURL string, creds *Credentials, opts ...Option) *UploadClient {
	return &UploadClient{base: newBase(baseURL, creds, opts)}
}

// RequestLocation asks the server for a signed location for one file.
// POST /api/uploads/sign
func (c *UploadClient) RequestLocation(ctx context.Context, filename, contentType string) (*domain.UploadTarget, error) {
	in := map[string]string{"filename": filename, "contentType": contentType}
	var target domain.UploadTarget
	if err := c.doJSON(ctx, http.MethodPost, "/api/uploads/sign", in, &target); err != nil {
		return nil, err
	}
	if target.SignedURL == "" || target.PublicURL == "" {
		return nil, errors.New("sign response is missing signedUrl or publicUrl")
	}
	return &target, nil
}

// Transfer PUTs data to signedURL. The signed URL carries its own
// authorization, so no bearer token is sent.
func (c *UploadClient) Transfer(ctx context.Context, signedURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
