package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dialect  string `json:"dialect"`
	Cache    string `json:"cache"`
}

// Health reports "up" when the database and cache answer and "degraded"
// otherwise. The status code is 200 in both cases.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "up", Database: "up", Dialect: string(h.exec.Dialect()), Cache: "up"}

	if err := h.exec.Ping(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Database health check failed")
		status.Status, status.Database = "degraded", "down"
	}
	if err := h.cache.Ping(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Cache health check failed")
		status.Status, status.Cache = "degraded", "down"
	}

	SendSuccess(w, http.StatusOK, "ok", status)
}
