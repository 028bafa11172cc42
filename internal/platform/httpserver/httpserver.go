package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Underwriting calls can block on pricing and
// postgres, so the write timeout leaves headroom above the store and
// pricing deadlines the services enforce.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
