package server

import (
	"net"
	"net/http"
	"time"
)

// NewServer creates and configures an HTTP server. An empty address
// binds every interface.
func NewServer(handler http.Handler, address, port string) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(address, port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
