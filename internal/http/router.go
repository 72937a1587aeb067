package http

import (
	"context"
	"net/http"
	"time"
)

type RouterConfig struct {
	Categories   *CategoryHandler
	Artists      *ArtistHandler
	Availability *AvailabilityHandler
	Moments      *MomentHandler

	// Health reports store readiness for GET /healthz. Nil always reports ok.
	Health func(ctx context.Context) error
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Observer receives per-request metrics labelled by route pattern.
	Observer RequestObserver

	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	if h := cfg.Categories; h != nil {
		mux.HandleFunc("GET /categories", h.List)
		mux.HandleFunc("POST /categories", h.Create)
		mux.HandleFunc("GET /categories/{id}", h.Get)
		mux.HandleFunc("PATCH /categories/{id}", h.Update)
		mux.HandleFunc("DELETE /categories/{id}", h.Delete)
	}

	if h := cfg.Artists; h != nil {
		mux.HandleFunc("GET /artists", h.List)
		mux.HandleFunc("POST /artists", h.Create)
		mux.HandleFunc("GET /artists/{id}", h.Get)
		mux.HandleFunc("PATCH /artists/{id}", h.Update)
		mux.HandleFunc("DELETE /artists/{id}", h.Delete)
	}

	if h := cfg.Availability; h != nil {
		mux.HandleFunc("GET /availability", h.List)
		mux.HandleFunc("POST /availability", h.Create)
		mux.HandleFunc("GET /availability/{id}", h.Get)
		mux.HandleFunc("PATCH /availability/{id}", h.Update)
		mux.HandleFunc("DELETE /availability/{id}", h.Delete)
		mux.HandleFunc("GET /availability/artist/{artistId}", h.Free)
		mux.HandleFunc("GET /availability/artist/{artistId}/booked", h.Booked)
		mux.HandleFunc("GET /availability/artist/{artistId}/concluded", h.Concluded)
	}

	if h := cfg.Moments; h != nil {
		mux.HandleFunc("GET /moments", h.List)
		mux.HandleFunc("POST /moments", h.Create)
		mux.HandleFunc("GET /moments/{id}", h.Get)
		mux.HandleFunc("PATCH /moments/{id}", h.Update)
		mux.HandleFunc("DELETE /moments/{id}", h.Delete)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	if cfg.Observer != nil {
		handler = Instrument(cfg.Observer, func(r *http.Request) string {
			_, pattern := mux.Handler(r)
			return pattern
		})(handler)
	}

	return handler
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	responder := newResponder(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "health check failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

type healthResponse struct {
	Status string `json:"status"`
}
