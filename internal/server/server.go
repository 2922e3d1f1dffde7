package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/userdir/internal/auth"
	"github.com/hongminglow/userdir/internal/config"
	"github.com/hongminglow/userdir/internal/directory"
	"github.com/hongminglow/userdir/internal/http/handlers"
	"github.com/hongminglow/userdir/internal/middleware"
	"github.com/hongminglow/userdir/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewHandler builds the credential and directory services over store and
// returns the fully wrapped HTTP handler.
func NewHandler(cfg config.Config, store storage.UserStore, log *slog.Logger) http.Handler {
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	creds := auth.NewService(store, tokens, hasher)
	users := directory.NewService(store, hasher)

	guard := func(next http.Handler) http.Handler {
		return middleware.RequireAuth(creds, log, next)
	}

	mux := http.NewServeMux()
	handlers.Mount(mux, guard, handlers.NewHealthHandler(time.Now(), store).Routes()...)
	handlers.Mount(mux, guard, handlers.NewUsersHandler(users, creds, log).Routes()...)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, log *slog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
