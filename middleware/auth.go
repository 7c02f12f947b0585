package middleware

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/Dosada05/tournament-admin/session"
)

// RequireSession пропускает запрос только с действующей сессией и кладёт её в контекст.
// Любой ответ 401 ниже по цепочке уничтожает сессию: токен API больше не принимается.
func RequireSession(m *session.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r)
			if err != nil {
				if errors.Is(err, session.ErrExpired) {
					if derr := m.Destroy(w, r); derr != nil {
						log.Warn("failed to destroy expired session", slog.Any("error", derr))
					}
				}
				unauthorized(w, err.Error())
				return
			}

			ew := &expireWriter{ResponseWriter: w, expire: func() {
				if derr := m.Destroy(w, r); derr != nil {
					log.Warn("failed to destroy rejected session", slog.Any("error", derr))
					return
				}
				log.Info("session destroyed after unauthorized response", slog.String("session_id", s.ID))
			}}
			next.ServeHTTP(ew, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// expireWriter вызывает expire перед отправкой заголовков ответа 401.
type expireWriter struct {
	http.ResponseWriter
	expire      func()
	wroteHeader bool
}

func (w *expireWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if status == http.StatusUnauthorized {
			w.expire()
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *expireWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Hijack нужен для websocket.
func (w *expireWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	w.wroteHeader = true
	return h.Hijack()
}

func (w *expireWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
