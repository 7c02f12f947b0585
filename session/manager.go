package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	DefaultCookieName = "tournament_admin"

	keyID        = "sid"
	keyToken     = "token"
	keyUser      = "user"
	keyExpiresAt = "expires_at"
)

type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager читает и пишет Session поверх любого sessions.Store.
// В сессии лежат только строки и int64, поэтому gob-регистрация типов не нужна.
type Manager struct {
	store sessions.Store
	o     Options
	now   func() time.Time
}

func NewManager(store sessions.Store, o Options) *Manager {
	if o.CookieName == "" {
		o.CookieName = DefaultCookieName
	}
	return &Manager{store: store, o: o, now: time.Now}
}

// CookieOptions - параметры cookie сессии для создания хранилищ.
func CookieOptions(o Options) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(o.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewCookieStore хранит сессию целиком в зашифрованной cookie.
func NewCookieStore(keys Keys, o Options) *sessions.CookieStore {
	store := sessions.NewCookieStore(keys.Hash, keys.Block)
	store.Options = CookieOptions(o)
	store.MaxAge(store.Options.MaxAge)
	return store
}

func (m *Manager) MaxAge() time.Duration { return m.o.MaxAge }

// Load возвращает сессию запроса или ErrNoSession / ErrExpired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	gs, err := m.store.Get(r, m.o.CookieName)
	if err != nil || gs.IsNew {
		return nil, ErrNoSession
	}
	token, _ := gs.Values[keyToken].(string)
	if token == "" {
		return nil, ErrNoSession
	}
	s := &Session{Token: token}
	s.ID, _ = gs.Values[keyID].(string)
	if exp, ok := gs.Values[keyExpiresAt].(int64); ok && exp > 0 {
		s.ExpiresAt = time.Unix(exp, 0)
	}
	if raw, ok := gs.Values[keyUser].(string); ok && raw != "" {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.User = &u
		}
	}
	if s.Expired(m.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

// Start открывает новую сессию вместо текущей. Пустой ExpiresAt заменяется на now+MaxAge,
// более поздний обрезается до него.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, s *Session) error {
	gs, err := m.store.New(r, m.o.CookieName)
	if err != nil && gs == nil {
		return fmt.Errorf("new session: %w", err)
	}
	gs.ID = ""
	gs.IsNew = true
	for k := range gs.Values {
		delete(gs.Values, k)
	}

	limit := m.now().Add(m.o.MaxAge)
	if s.ExpiresAt.IsZero() || s.ExpiresAt.After(limit) {
		s.ExpiresAt = limit
	}
	s.ID = uuid.NewString()
	return m.write(w, r, gs, s)
}

// Update перезаписывает данные текущей сессии, например после refresh токена.
func (m *Manager) Update(w http.ResponseWriter, r *http.Request, s *Session) error {
	gs, err := m.store.Get(r, m.o.CookieName)
	if err != nil && gs == nil {
		return fmt.Errorf("get session: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = m.now().Add(m.o.MaxAge)
	}
	return m.write(w, r, gs, s)
}

func (m *Manager) write(w http.ResponseWriter, r *http.Request, gs *sessions.Session, s *Session) error {
	gs.Values[keyID] = s.ID
	gs.Values[keyToken] = s.Token
	gs.Values[keyExpiresAt] = s.ExpiresAt.Unix()
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("marshal session user: %w", err)
		}
		gs.Values[keyUser] = string(raw)
	} else {
		delete(gs.Values, keyUser)
	}

	opts := *CookieOptions(m.o)
	if ttl := int(s.ExpiresAt.Sub(m.now()) / time.Second); ttl > 0 && ttl < opts.MaxAge {
		opts.MaxAge = ttl
	}
	gs.Options = &opts
	if err := gs.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy удаляет сессию и cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	gs, err := m.store.Get(r, m.o.CookieName)
	if err != nil && gs == nil {
		return fmt.Errorf("get session: %w", err)
	}
	for k := range gs.Values {
		delete(gs.Values, k)
	}
	opts := *CookieOptions(m.o)
	opts.MaxAge = -1
	gs.Options = &opts
	if err := gs.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}
