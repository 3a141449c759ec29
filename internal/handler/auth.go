package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// AuthHandler serves the account endpoints. Sessions go back both as a
// bearer token for the editor and as a cookie for the HTML pages.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// HandleLogin opens a session.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"token":"...","expiresAt":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}
	h.startSession(w, http.StatusOK, session)
}

// HandleRegister creates an account and signs it in.
// POST /api/auth/register
// Request:  {"email":"...","displayName":"...","password":"...","confirmPassword":"..."}
// Response: 201 with the login response body
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		DisplayName     string `json:"displayName"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password, req.ConfirmPassword); err != nil {
		writeServiceError(w, "register user", err)
		return
	}
	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login new user", err)
		return
	}
	h.startSession(w, http.StatusCreated, session)
}

// HandleLogout clears the session cookie. Bearer tokens simply expire.
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie := h.cookie("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in user.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]UserDTO{"user": toUserDTO(UserFromContext(r.Context()))})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, status int, s *service.Session) {
	cookie := h.cookie(s.Token)
	cookie.Expires = s.ExpiresAt
	http.SetCookie(w, cookie)

	writeJSON(w, status, sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		User:      toUserDTO(s.User),
	})
}

func (h *AuthHandler) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
