package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger - зависимость, доступность которой влияет на готовность сервиса (БД сессий).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	version string
	db      Pinger
}

// NewHealthHandler. db может быть nil, если сессии хранятся в cookie.
func NewHealthHandler(version string, db Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	rsp := jsonResponse{"status": "ok", "version": h.version}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			rsp["status"] = "degraded"
			rsp["database"] = err.Error()
		} else {
			rsp["database"] = "ok"
		}
	}

	if err := writeJSON(w, status, rsp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
