package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
)

// PageHandler renders the server-side HTML pages.
type PageHandler struct {
	articles *service.ArticleService
	comments *service.CommentService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(articles *service.ArticleService, comments *service.CommentService) *PageHandler {
	return &PageHandler{articles: articles, comments: comments}
}

// HandleHome renders the latest published articles, optionally filtered
// by ?category= or ?tag=.
// GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		view.ErrorPage(http.StatusNotFound, "Not Found", "That page does not exist.").Render(r.Context(), w)
		return
	}

	q := r.URL.Query()
	filter := domain.ArticleFilter{Category: q.Get("category"), Tag: q.Get("tag"), Limit: maxListLimit}
	active := filter.Category
	if active == "" {
		active = filter.Tag
	}

	articles, err := h.articles.ListPublic(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			view.ErrorPage(http.StatusBadRequest, "Bad Request", "Filter by category or tag, not both.").Render(r.Context(), w)
			return
		}
		slog.Error("list public articles", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.HomePage(service.Summarize(articles), active, viewerName(r)).Render(r.Context(), w)
}

// HandleArticle renders one article with its comment thread.
// GET /articles/{id}
func (h *PageHandler) HandleArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), r.PathValue("id"), UserFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			view.ErrorPage(http.StatusNotFound, "Not Found", "We couldn't find that article.").Render(r.Context(), w)
		case errors.Is(err, domain.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
			view.ErrorPage(http.StatusUnauthorized, "Sign In Required", "Sign in to view this draft.").Render(r.Context(), w)
		case errors.Is(err, domain.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			view.ErrorPage(http.StatusForbidden, "Access Denied", "You don't have permission to view this draft.").Render(r.Context(), w)
		default:
			slog.Error("get article page", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	var thread []domain.Comment
	if article.Status == domain.ArticleStatusPublished {
		thread, err = h.comments.Thread(r.Context(), article.ID)
		if err != nil {
			slog.Error("list comments for article page", "error", err)
			thread = nil
		}
	}

	view.ArticlePage(view.ArticlePageData{
		Article:    article,
		Comments:   thread,
		ViewerName: viewerName(r),
	}).Render(r.Context(), w)
}

func viewerName(r *http.Request) string {
	if user := UserFromContext(r.Context()); user != nil {
		return user.DisplayName
	}
	return ""
}
