// Package server is the composition root: it builds every component once,
// injects it where it is needed, and owns the HTTP server's lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	config → store (sqlite | mongo | firestore) → services → handlers → routes
//	       → TokenService, HostedProvider → signin.Orchestrator ↗
//
// Nothing is a package-level singleton. Tests build a Server from a Config
// and a Store of their choosing.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sakif/mentorchat/internal/auth"
	"github.com/sakif/mentorchat/internal/config"
	"github.com/sakif/mentorchat/internal/handler"
	"github.com/sakif/mentorchat/internal/middleware"
	"github.com/sakif/mentorchat/internal/repository"
	firestoreRepo "github.com/sakif/mentorchat/internal/repository/firestore"
	mongoRepo "github.com/sakif/mentorchat/internal/repository/mongo"
	sqliteRepo "github.com/sakif/mentorchat/internal/repository/sqlite"
	"github.com/sakif/mentorchat/internal/service"
	"github.com/sakif/mentorchat/internal/signin"
)

// Store is a document store backend: both repositories plus Close.
type Store interface {
	repository.UserRepository
	repository.MessageRepository
	io.Closer
}

var (
	_ Store = (*sqliteRepo.DB)(nil)
	_ Store = (*mongoRepo.Store)(nil)
	_ Store = (*firestoreRepo.Store)(nil)
)

// OpenStore opens the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		store, err := mongoRepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreFirestore:
		store, err := firestoreRepo.New(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Server represents the HTTP server and everything it owns.
// The store is closed when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  Store
}

// New wires the application around store.
//
// When cfg.AuthEnabled() is false the server still starts: the landing page
// and health check work, /auth/* is not registered and /api/* always
// answers 401. This keeps local development possible without a provider.
func New(ctx context.Context, cfg config.Config, store Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	var provider signin.Provider
	if cfg.AuthEnabled() {
		p, err := auth.NewHostedProvider(ctx, cfg.AuthIssuerURL, cfg.AuthClientID, cfg.AuthClientSecret, cfg.AuthRedirectURL)
		if err != nil {
			return nil, fmt.Errorf("setting up identity provider: %w", err)
		}
		provider = p
	}

	if err := s.setupRoutes(provider); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET    /                              → landing page (HTML)
//	GET    /health                        → liveness
//	GET    /auth/signin                   → start hosted sign-in
//	GET    /auth/callback                 → finish sign-in, sync user
//	POST   /auth/signout                  → clear session
//	GET    /api/me                        → current user
//	DELETE /api/me                        → delete account
//	POST   /api/me/sync                   → re-sync current user
//	PUT    /api/me/username               → change username
//	PUT    /api/me/mentor                 → change mentor flag
//	GET    /api/chats/{chatID}/messages   → oldest 50 messages
//	POST   /api/chats/{chatID}/messages   → post a message
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger can print the id, and Recoverer sits
// inside Logger so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes(provider signin.Provider) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	userService := service.NewUserService(s.store, s.logger)
	chatService := service.NewChatService(s.store, s.store, s.logger)

	homeHandler, err := handler.NewHomeHandler(userService, s.logger)
	if err != nil {
		return fmt.Errorf("creating home handler: %w", err)
	}

	// Without a session secret no cookie can ever validate. A throwaway
	// secret keeps the middleware wiring identical in both modes.
	secret := s.config.JWTSecret
	if !s.config.AuthEnabled() {
		s.logger.Warn("JWT_SECRET, AUTH_ISSUER_URL or AUTH_CLIENT_ID not set, authentication is disabled")
		secret = uuid.NewString()
	}
	tokens, err := auth.NewTokenService(secret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	s.router.With(auth.OptionalAuth(tokens)).Get("/", homeHandler.HandleHome)

	if provider != nil {
		opts := signin.DefaultOptions()
		opts.Theme = s.config.SigninTheme
		opts.Logo = s.config.SigninLogo
		orchestrator := signin.New(provider, opts, s.logger)

		authHandler := handler.NewAuthHandler(orchestrator, tokens, userService, s.logger)
		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/signin", authHandler.HandleSignIn)
			r.Get("/callback", authHandler.HandleCallback)
			r.Post("/signout", authHandler.HandleSignOut)
		})
	}

	userHandler := handler.NewUserHandler(userService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", userHandler.HandleMe)
		r.Delete("/me", userHandler.HandleDelete)
		r.Post("/me/sync", userHandler.HandleSync)
		r.Put("/me/username", userHandler.HandleUpdateUsername)
		r.Put("/me/mentor", userHandler.HandleUpdateMentor)

		r.Get("/chats/{chatID}/messages", chatHandler.HandleList)
		r.Post("/chats/{chatID}/messages", chatHandler.HandleCreate)
	})

	return nil
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the store
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.config.StoreDriver),
			slog.Bool("auth", s.config.AuthEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
