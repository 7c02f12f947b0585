package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/session"
)

type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*session.Session, error)
	Register(ctx context.Context, req models.RegisterRequest) (*session.Session, error)
	Refresh(ctx context.Context, s *session.Session) (*session.Session, error)
	CurrentUser(ctx context.Context, s *session.Session) (*models.User, error)
	Logout(s *session.Session)
}

// SessionCloser освобождает ресурсы, привязанные к сессии (открытые редакторы).
type SessionCloser interface {
	CloseOwner(owner string) int
}

type authService struct {
	api    AuthAPI
	closer SessionCloser
	log    *slog.Logger
}

func NewAuthService(api AuthAPI, closer SessionCloser, log *slog.Logger) AuthService {
	return &authService{
		api:    api,
		closer: closer,
		log:    log,
	}
}

func (s *authService) Login(ctx context.Context, creds models.Credentials) (*session.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := requireFields(map[string]string{"email": creds.Email, "password": creds.Password}); err != nil {
		return nil, err
	}

	rsp, err := s.api.Login(ctx, creds)
	if err != nil {
		switch apiclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusUnprocessableEntity:
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", mapAPIError(err))
	}
	return newSession(rsp)
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*session.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := requireFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
		"name":     req.Name,
	}); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, &FieldError{Field: "email", Message: "invalid email address"}
	}
	if req.Password != req.PasswordConfirmation {
		return nil, &FieldError{Field: "password_confirmation", Message: ErrPasswordMismatch.Error()}
	}

	rsp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", mapAPIError(err))
	}
	return newSession(rsp)
}

func newSession(rsp *models.AuthResponse) (*session.Session, error) {
	if rsp == nil || rsp.AccessToken == "" {
		return nil, ErrAuthenticationFailed
	}
	return &session.Session{
		Token:     rsp.AccessToken,
		User:      rsp.User,
		ExpiresAt: tokenExpiry(rsp.AccessToken),
	}, nil
}

// tokenExpiry читает exp из JWT без проверки подписи: подпись проверяет API.
// Для непрозрачных токенов возвращает нулевое время.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (s *authService) Refresh(ctx context.Context, sess *session.Session) (*session.Session, error) {
	rsp, err := s.api.Refresh(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", mapAPIError(err))
	}
	if rsp == nil || !rsp.OK || rsp.Session == nil || rsp.Session.AccessToken == "" {
		return nil, ErrSessionExpired
	}

	next := &session.Session{
		ID:        sess.ID,
		Token:     rsp.Session.AccessToken,
		User:      sess.User,
		ExpiresAt: tokenExpiry(rsp.Session.AccessToken),
	}
	if rsp.Session.User != nil {
		next.User = rsp.Session.User
	}
	if rsp.Session.ExpiresAt > 0 {
		next.ExpiresAt = time.Unix(rsp.Session.ExpiresAt, 0)
	}
	return next, nil
}

// CurrentUser сначала смотрит в сессию и только потом спрашивает /me.
func (s *authService) CurrentUser(ctx context.Context, sess *session.Session) (*models.User, error) {
	if sess.User != nil {
		return sess.User, nil
	}
	user, err := s.api.Me(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", mapAPIError(err))
	}
	if user == nil {
		return nil, ErrAuthenticationFailed
	}
	sess.User = user
	return user, nil
}

func (s *authService) Logout(sess *session.Session) {
	if s.closer == nil || sess == nil {
		return
	}
	if n := s.closer.CloseOwner(sess.ID); n > 0 {
		s.log.Info("schema editors closed on logout", slog.Int("count", n))
	}
}
