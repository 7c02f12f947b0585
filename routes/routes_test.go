package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-admin/handlers"
	"github.com/Dosada05/tournament-admin/live"
	"github.com/Dosada05/tournament-admin/middleware"
	"github.com/Dosada05/tournament-admin/session"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys, err := session.DeriveKeys("0123456789abcdef0123456789abcdef-test")
	if err != nil {
		t.Fatal(err)
	}
	o := session.Options{MaxAge: time.Hour}
	sessions := session.NewManager(session.NewCookieStore(keys, o), o)

	h := Handlers{
		Auth:       handlers.NewAuthHandler(nil, sessions),
		Editor:     handlers.NewEditorHandler(nil),
		Tournament: handlers.NewTournamentHandler(nil),
		Team:       handlers.NewTeamHandler(nil),
		Match:      handlers.NewMatchHandler(nil),
		Live:       handlers.NewLiveHandler(live.NewHub(log), nil),
		Health:     handlers.NewHealthHandler("test", nil),
	}
	router := chi.NewRouter()
	SetupRoutes(router, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		CSRFEnabled:    true,
		CSRFKey:        keys.CSRF,
	}, h, sessions, middleware.NewIPRateLimiter(1, 5, false, log), log)
	return router
}

func TestRoutes(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"csrf token", http.MethodGet, "/api/csrf", http.StatusOK},
		{"login without csrf token", http.MethodPost, "/api/auth/login", http.StatusForbidden},
		{"me without session", http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{"tournaments without session", http.MethodGet, "/api/tournaments", http.StatusUnauthorized},
		{"editor without session", http.MethodGet, "/api/editors/abc", http.StatusUnauthorized},
		{"live without session", http.MethodGet, "/api/matches/1/live", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("%s %s: expected = %v, got = %v", tt.method, tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestCSRFTokenHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	if rec.Header().Get("X-CSRF-Token") == "" {
		t.Fatal("csrf token header must be set")
	}
}

func TestTrustedHosts(t *testing.T) {
	got := trustedHosts([]string{"https://admin.example.com", "http://localhost:5173", "not a url"})
	if len(got) != 2 || got[0] != "admin.example.com" || got[1] != "localhost:5173" {
		t.Fatalf("expected = [admin.example.com localhost:5173], got = %v", got)
	}
}
