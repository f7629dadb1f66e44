package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"notes-service/internal/api/http/middleware"
	"notes-service/internal/config"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter собирает chi роутер с middleware и маршрутами API.
// pinger может быть nil, тогда /healthz всегда отвечает ok
func NewRouter(h *Handler, cfg *config.Config, log zerolog.Logger, pinger Pinger) http.Handler {
	r := chi.NewRouter()

	// Порядок: CORS → логирование → recover → rate limit
	r.Use(middleware.CORS(cfg.Gateway))
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimit(cfg.Gateway.RateLimitRPS, cfg.Gateway.RateLimitBurst))

	r.Get("/healthz", healthz(pinger))

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.Auth.TokenHash))
		h.Register(r)
	})

	return r
}

func healthz(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
				writeText(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeText(w, http.StatusOK, "ok")
	}
}
