// package server contains the router, middleware & handlers for the local authorization server
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers mounted on a [Router].
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Listener serves a handler on a bound TCP address until shut down.
type Listener struct {
	server *http.Server
	addr   string
	errs   chan error
	logger *log.Logger
}

// Listen binds addr and starts serving handler in a background goroutine.
//
// The port is bound before Listen returns, so the redirect URI is reachable as soon as the browser opens.
func Listen(addr string, handler http.Handler, logger *log.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		server: &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		addr:   ln.Addr().String(),
		errs:   make(chan error, 1),
		logger: logger,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.errs <- err
		}
	}()

	if logger != nil {
		logger.Info("auth server listening", "addr", l.addr)
	}
	return l, nil
}

// Addr returns the bound address (host:port).
func (l *Listener) Addr() string {
	return l.addr
}

// Errors receives a fatal serve error, if one occurs.
func (l *Listener) Errors() <-chan error {
	return l.errs
}

// Shutdown gracefully stops the server.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.server.Shutdown(ctx)
}
