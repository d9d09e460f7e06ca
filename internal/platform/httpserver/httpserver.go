package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used for the claims API.
// Adjudication is CPU-bound and short, so the write timeout is tight.
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
