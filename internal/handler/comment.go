package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
)

// CommentHandler handles the comment JSON API and the article page's
// comment form.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Body     string `json:"body"`
	ParentID *int64 `json:"parentId"`
}

// parent treats a zero parent id as a top-level comment.
func (c commentRequest) parent() *int64 {
	if c.ParentID == nil || *c.ParentID == 0 {
		return nil
	}
	return c.ParentID
}

// HandleThread returns an article's comments as a tree.
// GET /api/articles/{id}/comments
func (h *CommentHandler) HandleThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.comments.Thread(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "list comments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": toCommentDTOs(thread)})
}

// HandleReplies returns the direct replies to one comment.
// GET /api/comments/{id}/replies
func (h *CommentHandler) HandleReplies(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment id.")
		return
	}

	replies, err := h.comments.ListReplies(r.Context(), id)
	if err != nil {
		writeServiceError(w, "list replies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": toCommentDTOs(replies)})
}

// HandleCreate posts a comment through the JSON API.
// POST /api/articles/{id}/comments
// Request:  {"body":"...","parentId":null}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	comment, err := h.comments.Post(r.Context(), UserFromContext(r.Context()), r.PathValue("id"), req.parent(), req.Body)
	if err != nil {
		writeServiceError(w, "post comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}

// HandlePost posts a comment from the article page and answers with SSE
// patches for the thread and the form.
// POST /articles/{id}/comments
func (h *CommentHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	articleID := r.PathValue("id")

	var signals commentRequest
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := h.comments.Post(r.Context(), user, articleID, signals.parent(), signals.Body)
	if err != nil {
		message := "Could not post your comment. Please try again."
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			message = "Comments must be between 1 and " + strconv.Itoa(service.MaxCommentLength) + " characters."
		case errors.Is(err, domain.ErrUnauthorized):
			message = "Sign in to comment."
		case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
			message = "Comments are closed for this article."
		default:
			slog.Error("post comment", "error", err)
		}
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(
			view.CommentError(message),
			datastar.WithSelectorID("comment-error"),
			datastar.WithModeInner(),
		)
		return
	}

	thread, err := h.comments.Thread(r.Context(), articleID)
	if err != nil {
		slog.Error("list comments after post", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.CommentThread(thread, user != nil),
		datastar.WithSelectorID("comment-thread"),
		datastar.WithModeInner(),
	)
	sse.PatchElementTempl(
		view.CommentError(""),
		datastar.WithSelectorID("comment-error"),
		datastar.WithModeInner(),
	)
	sse.PatchSignals([]byte(`{"body":"","parentId":0}`))
}
