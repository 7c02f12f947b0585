// Package session хранит токен API и пользователя на стороне сервера: явный объект
// сессии, который middleware кладёт в контекст запроса.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/tournament-admin/models"
)

var (
	ErrNoSession = errors.New("no active session")
	ErrExpired   = errors.New("session expired")
)

// Session - авторизованный контекст одного пользователя админки.
type Session struct {
	// ID стабилен на всё время жизни сессии, им помечаются открытые редакторы.
	ID        string
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
