package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

const (
	defaultHomepageLimit = 10
	maxListLimit         = 100
)

// ArticleHandler handles the article JSON API.
type ArticleHandler struct {
	articles *service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// HandleCreate creates an article owned by the caller.
// POST /api/articles
// Response: 201 {"success":true,"articleId":"...","message":"..."}
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.ArticleInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	article, err := h.articles.Create(r.Context(), UserFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, "create article", err)
		return
	}

	message := "Article draft created successfully"
	if article.Status == domain.ArticleStatusPublished {
		message = "Article published successfully"
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"articleId": article.ID,
		"message":   message,
	})
}

// HandleGet returns one article. Drafts require the author's token.
// GET /api/articles/{id}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), r.PathValue("id"), UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "get article", err)
		return
	}

	if article.Status == domain.ArticleStatusPublished {
		w.Header().Set("Cache-Control", "public, max-age=300, s-maxage=600")
	} else {
		w.Header().Set("Cache-Control", "private, no-store")
	}
	writeJSON(w, http.StatusOK, toArticleDTO(article))
}

// HandleUpdate replaces an article owned by the caller.
// PUT /api/articles/{id}
// Response: {"success":true,"articleId":"...","message":"..."}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in domain.ArticleInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	article, err := h.articles.Update(r.Context(), UserFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, "update article", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"articleId": article.ID,
		"message":   "Article updated successfully",
	})
}

// HandleDelete removes an article owned by the caller.
// DELETE /api/articles/{id}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), UserFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, "delete article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMine lists the caller's articles, drafts included.
// GET /api/articles
func (h *ArticleHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	articles, err := h.articles.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list articles by author", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": toArticleDTOs(articles)})
}

// HandleListPublic lists published articles.
// GET /api/public/articles?category=...|tag=...&limit=...
func (h *ArticleHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"), maxListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a positive number.")
		return
	}

	articles, err := h.articles.ListPublic(r.Context(), domain.ArticleFilter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, "list public articles", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": toArticleDTOs(articles)})
}

// HandleHomepage lists the latest published articles with snippets.
// GET /api/homepage?limit=...
func (h *ArticleHandler) HandleHomepage(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultHomepageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a positive number.")
		return
	}

	summaries, err := h.articles.Homepage(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "load homepage", err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, map[string]any{"articles": toSummaryDTOs(summaries)})
}

// parseLimit reads an optional positive limit, capped at maxListLimit.
func parseLimit(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return min(n, maxListLimit), nil
}
