package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/tournament-admin/session"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManager(t *testing.T) *session.Manager {
	t.Helper()
	keys, err := session.DeriveKeys("0123456789abcdef0123456789abcdef-test")
	if err != nil {
		t.Fatal(err)
	}
	o := session.Options{MaxAge: time.Hour}
	return session.NewManager(session.NewCookieStore(keys, o), o)
}

// loggedIn возвращает запрос с cookie только что открытой сессии.
func loggedIn(t *testing.T, m *session.Manager) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.Start(rec, httptest.NewRequest(http.MethodPost, "/", nil), &session.Session{Token: "tok"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func expiredCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	called := false
	h := RequireSession(testManager(t), quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: expected = %v, got = %v", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Fatal("handler must not run without a session")
	}
}

func TestRequireSessionPutsSessionInContext(t *testing.T) {
	m := testManager(t)
	var token string
	h := RequireSession(m, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if ok {
			token = s.Token
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loggedIn(t, m))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: expected = %v, got = %v", http.StatusNoContent, rec.Code)
	}
	if token != "tok" {
		t.Fatalf("token: expected = %q, got = %q", "tok", token)
	}
	if expiredCookie(rec) {
		t.Fatal("session must survive a successful response")
	}
}

func TestUnauthorizedResponseDestroysSession(t *testing.T) {
	m := testManager(t)
	h := RequireSession(m, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loggedIn(t, m))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: expected = %v, got = %v", http.StatusUnauthorized, rec.Code)
	}
	if !expiredCookie(rec) {
		t.Fatal("session cookie must be expired after 401")
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2, false, quietLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if got := call("10.0.0.1:5000"); got != http.StatusOK {
			t.Fatalf("request %d: expected = %v, got = %v", i, http.StatusOK, got)
		}
	}
	if got := call("10.0.0.1:5001"); got != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded: expected = %v, got = %v", http.StatusTooManyRequests, got)
	}
	if got := call("10.0.0.2:5000"); got != http.StatusOK {
		t.Fatalf("other client: expected = %v, got = %v", http.StatusOK, got)
	}

	now = now.Add(time.Second)
	if got := call("10.0.0.1:5000"); got != http.StatusOK {
		t.Fatalf("after refill: expected = %v, got = %v", http.StatusOK, got)
	}

	now = now.Add(limiterIdle + time.Second)
	if n := l.Cleanup(); n != 2 {
		t.Fatalf("cleanup: expected = 2, got = %v", n)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := clientIP(req, false); got != "192.0.2.1" {
		t.Fatalf("direct: expected = %q, got = %q", "192.0.2.1", got)
	}
	if got := clientIP(req, true); got != "203.0.113.9" {
		t.Fatalf("proxied: expected = %q, got = %q", "203.0.113.9", got)
	}
}
