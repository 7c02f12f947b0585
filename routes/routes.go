package routes

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"

	"github.com/Dosada05/tournament-admin/handlers"
	"github.com/Dosada05/tournament-admin/middleware"
	"github.com/Dosada05/tournament-admin/session"
)

type Options struct {
	AllowedOrigins []string
	TrustProxy     bool
	CSRFEnabled    bool
	CSRFKey        []byte
	SecureCookies  bool
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	Editor     *handlers.EditorHandler
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Match      *handlers.MatchHandler
	Live       *handlers.LiveHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(
	router chi.Router,
	o Options,
	h Handlers,
	sessions *session.Manager,
	loginLimiter *middleware.IPRateLimiter,
	log *slog.Logger,
) {
	router.Use(chiMiddleware.RequestID)
	if o.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RequestLogger(log))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"X-CSRF-Token", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Health)

	router.Route("/api", func(r chi.Router) {
		if o.CSRFEnabled {
			r.Use(csrf.Protect(o.CSRFKey,
				csrf.Path("/"),
				csrf.Secure(o.SecureCookies),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.RequestHeader("X-CSRF-Token"),
				csrf.TrustedOrigins(trustedHosts(o.AllowedOrigins)),
				csrf.ErrorHandler(http.HandlerFunc(csrfFailure(log))),
			))
		}

		// websocket не проходит через gzip: сжатый writer не умеет Hijack.
		r.With(middleware.RequireSession(sessions, log)).Get("/matches/{matchID}/live", h.Live.ServeWs)

		r.Group(func(r chi.Router) {
			r.Use(gziphandler.GzipHandler)
			r.Use(chiMiddleware.Timeout(60 * time.Second))

			r.Get("/csrf", h.Auth.CSRFToken)
			r.Route("/auth", func(r chi.Router) {
				r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
				r.With(loginLimiter.Middleware).Post("/register", h.Auth.Register)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSession(sessions, log))
					r.Post("/logout", h.Auth.Logout)
					r.Post("/refresh", h.Auth.Refresh)
					r.Get("/me", h.Auth.Me)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(sessions, log))
				tournamentRoutes(r, h)
				teamRoutes(r, h)
				matchRoutes(r, h)
				editorRoutes(r, h)
			})
		})
	})
}

func tournamentRoutes(r chi.Router, h Handlers) {
	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Post("/", h.Tournament.Create)
		r.Get("/formats", h.Tournament.Formats)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.Get)

			r.Post("/teams", h.Tournament.AddTeam)
			r.Post("/teams/bulk", h.Tournament.AddTeamsBulk)
			r.Delete("/teams/{teamID}", h.Tournament.RemoveTeam)

			r.Get("/fixtures", h.Tournament.Fixtures)
			r.Post("/fixtures/generate", h.Tournament.GenerateFixtures)

			r.Get("/phases", h.Tournament.Phases)
			r.Post("/phases", h.Tournament.CreatePhase)
			r.Put("/phases/{phaseID}", h.Tournament.UpdatePhase)
			r.Post("/phases/{phaseID}/fixtures", h.Tournament.GeneratePhaseFixtures)

			r.Post("/schema/editor", h.Editor.Open)
		})
	})
}

func teamRoutes(r chi.Router, h Handlers) {
	r.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Post("/", h.Team.Create)
		r.Get("/{teamID}", h.Team.Get)
	})
	r.Route("/players", func(r chi.Router) {
		r.Post("/", h.Team.CreatePlayer)
		r.Post("/import", h.Team.ImportPlayers)
		r.Get("/template", h.Team.Template)
	})
}

func matchRoutes(r chi.Router, h Handlers) {
	r.Route("/matches/{matchID}", func(r chi.Router) {
		r.Put("/schedule", h.Match.Schedule)
		r.Get("/lineups", h.Match.Lineups)
		r.Post("/lineups", h.Match.RegisterLineup)
		r.Get("/events", h.Match.Events)
		r.Post("/events", h.Match.AddEvent)
		r.Post("/substitutions", h.Match.AddSubstitution)
	})
}

func editorRoutes(r chi.Router, h Handlers) {
	r.Route("/editors/{editorID}", func(r chi.Router) {
		r.Get("/", h.Editor.Get)
		r.Delete("/", h.Editor.Close)
		r.Post("/registry/reload", h.Editor.ReloadRegistry)
		r.Post("/save", h.Editor.Save)

		r.Post("/add", h.Editor.BeginAdd)
		r.Patch("/draft", h.Editor.UpdateDraft)
		r.Post("/add/commit", h.Editor.CommitAdd)
		r.Post("/add/cancel", h.Editor.CancelAdd)

		r.Route("/phases/{index}", func(r chi.Router) {
			r.Delete("/", h.Editor.Remove)
			r.Post("/edit", h.Editor.BeginEdit)
			r.Post("/edit/commit", h.Editor.CommitEdit)
			r.Post("/edit/cancel", h.Editor.CancelEdit)
			r.Post("/up", h.Editor.MoveUp)
			r.Post("/down", h.Editor.MoveDown)
		})
	})
}

// trustedHosts переводит origin вида https://host:port в host:port для проверки Referer.
func trustedHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

func csrfFailure(log *slog.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn("csrf check failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", csrf.FailureReason(r)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid or missing CSRF token"}` + "\n"))
	}
}
