package http

import (
	"net/http"

	"github.com/yungbote/coursehub/internal/config"
)

// NewServer wraps handler with the configured timeouts. There is no write
// timeout because /api/events holds connections open.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		WriteTimeout:      0,
	}
}
