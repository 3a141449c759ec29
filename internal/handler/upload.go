package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// UploadHandler signs upload locations and, for the local storage backend,
// receives and serves the uploaded images.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// HandleSign issues a signed upload location for one image.
// POST /api/uploads/sign
// Request:  {"filename":"...","contentType":"image/png"}
// Response: {"signedUrl":"...","publicUrl":"...","key":"...","expiresAt":"..."}
func (h *UploadHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	target, err := h.uploads.SignUpload(r.Context(), user.ID, req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, "sign upload", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"signedUrl": target.SignedURL,
		"publicUrl": target.PublicURL,
		"key":       target.Key,
		"expiresAt": target.ExpiresAt,
	})
}

// HandleAccept stores bytes PUT to a locally signed location. The token in
// the query string is the only credential.
// PUT /uploads/{key...}?token=...
func (h *UploadHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	token := r.URL.Query().Get("token")
	if key == "" || token == "" {
		writeError(w, http.StatusBadRequest, "Missing upload key or token.")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds 10MB limit.")
			return
		}
		slog.Error("read upload body", "error", err)
		writeError(w, http.StatusBadRequest, "Could not read upload.")
		return
	}

	if err := h.uploads.Accept(r.Context(), key, token, r.Header.Get("Content-Type"), data); err != nil {
		writeServiceError(w, "accept upload", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleServe serves a locally stored image.
// GET /media/{key...}
func (h *UploadHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	file, err := h.uploads.Open(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve media", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	// Keys are unique per upload, so the bytes never change.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(file.Data)
}
