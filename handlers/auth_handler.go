package handlers

import (
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/services"
	"github.com/Dosada05/tournament-admin/session"
)

type AuthHandler struct {
	authService services.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(as services.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: as,
		sessions:    sessions,
	}
}

func sessionResponse(s *session.Session) jsonResponse {
	return jsonResponse{
		"user":       s.User,
		"expires_at": s.ExpiresAt.UTC(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	s, err := h.authService.Login(r.Context(), creds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.sessions.Start(w, r, s); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, sessionResponse(s), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	s, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.sessions.Start(w, r, s); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, sessionResponse(s), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	h.authService.Logout(s)
	if err := h.sessions.Destroy(w, r); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	next, err := h.authService.Refresh(r.Context(), s)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.sessions.Update(w, r, next); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, sessionResponse(next), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	cached := s.User != nil

	user, err := h.authService.CurrentUser(r.Context(), s)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	// Пользователь, полученный из /me, сохраняется в сессии.
	if !cached {
		if err := h.sessions.Update(w, r, s); err != nil {
			serverErrorResponse(w, r, err)
			return
		}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CSRFToken отдаёт токен для заголовка X-CSRF-Token.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{}
	headers.Set("X-CSRF-Token", csrf.Token(r))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"csrf_token": csrf.Token(r)}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}
