package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-admin/repositories"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// PGStore держит значения сессии в postgres, а в cookie - только подписанный id.
// Данные в таблице зашифрованы теми же ключами, что и cookie.
type PGStore struct {
	repo    repositories.SessionRepository
	Codecs  []securecookie.Codec
	Options *sessions.Options
}

var _ sessions.Store = (*PGStore)(nil)

func NewPGStore(repo repositories.SessionRepository, keys Keys, o Options) *PGStore {
	codecs := securecookie.CodecsFromPairs(keys.Hash, keys.Block)
	opts := CookieOptions(o)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(opts.MaxAge)
			sc.MaxLength(0)
		}
	}
	return &PGStore{repo: repo, Codecs: codecs, Options: opts}
}

func (s *PGStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *PGStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.Codecs...); err != nil {
		// подделанная или старая cookie: начинаем с чистой сессии
		return session, nil
	}
	rec, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("load session: %w", err)
	}
	if err := securecookie.DecodeMulti(name, rec.Data, &session.Values, s.Codecs...); err != nil {
		return session, nil
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

func (s *PGStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.repo.Delete(ctx, session.ID); err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	rec := &repositories.SessionRecord{
		ID:        session.ID,
		Data:      data,
		ExpiresAt: time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second),
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// DeleteExpired удаляет просроченные сессии, вызывается планировщиком.
func (s *PGStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}
