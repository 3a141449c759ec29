package handler

import (
	"net/http"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// Services bundles what the routes need.
type Services struct {
	DB       domain.Database
	Auth     *service.AuthService
	Articles *service.ArticleService
	Comments *service.CommentService
	Uploads  *service.UploadService

	LoginLimiter  *service.TokenBucket // per client IP
	UploadLimiter *service.TokenBucket // per user
	CookieSecure  bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authH := NewAuthHandler(s.Auth, s.CookieSecure)
	articleH := NewArticleHandler(s.Articles)
	commentH := NewCommentHandler(s.Comments)
	uploadH := NewUploadHandler(s.Uploads)
	pageH := NewPageHandler(s.Articles, s.Comments)

	requireAuth := func(h http.HandlerFunc) http.Handler { return RequireAuth(s.Auth, h) }
	optionalAuth := func(h http.HandlerFunc) http.Handler { return OptionalAuth(s.Auth, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz(s.DB))

	// Auth.
	mux.Handle("POST /api/auth/register", limit(s.LoginLimiter, http.HandlerFunc(authH.HandleRegister)))
	mux.Handle("POST /api/auth/login", limit(s.LoginLimiter, http.HandlerFunc(authH.HandleLogin)))
	mux.HandleFunc("POST /api/auth/logout", authH.HandleLogout)
	mux.Handle("GET /api/auth/me", requireAuth(authH.HandleMe))

	// Uploads. The PUT is authorized by the token in its signed URL.
	mux.Handle("POST /api/uploads/sign", RequireAuth(s.Auth, limit(s.UploadLimiter, http.HandlerFunc(uploadH.HandleSign))))
	mux.HandleFunc("PUT /uploads/{key...}", uploadH.HandleAccept)
	mux.HandleFunc("GET /media/{key...}", uploadH.HandleServe)

	// Articles.
	mux.Handle("GET /api/articles", requireAuth(articleH.HandleListMine))
	mux.Handle("POST /api/articles", requireAuth(articleH.HandleCreate))
	mux.Handle("GET /api/articles/{id}", optionalAuth(articleH.HandleGet))
	mux.Handle("PUT /api/articles/{id}", requireAuth(articleH.HandleUpdate))
	mux.Handle("DELETE /api/articles/{id}", requireAuth(articleH.HandleDelete))
	mux.HandleFunc("GET /api/public/articles", articleH.HandleListPublic)
	mux.HandleFunc("GET /api/homepage", articleH.HandleHomepage)

	// Comments.
	mux.HandleFunc("GET /api/articles/{id}/comments", commentH.HandleThread)
	mux.Handle("POST /api/articles/{id}/comments", requireAuth(commentH.HandleCreate))
	mux.HandleFunc("GET /api/comments/{id}/replies", commentH.HandleReplies)

	// Pages.
	mux.Handle("GET /{$}", optionalAuth(pageH.HandleHome))
	mux.Handle("GET /articles/{id}", optionalAuth(pageH.HandleArticle))
	mux.Handle("POST /articles/{id}/comments", optionalAuth(commentH.HandlePost))
}

// limit applies a rate limiter when one is configured.
func limit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return RateLimit(limiter, next)
}
