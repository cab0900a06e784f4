// Package server assembles the HTTP server: it wires the database, services,
// realtime hub, and handlers onto the router, and owns startup and graceful
// shutdown. Nothing outside this package constructs the dependency chain.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arefin/flowboard/internal/auth"
	"github.com/arefin/flowboard/internal/config"
	"github.com/arefin/flowboard/internal/handler"
	"github.com/arefin/flowboard/internal/middleware"
	"github.com/arefin/flowboard/internal/realtime"
	sqliteRepo "github.com/arefin/flowboard/internal/repository/sqlite"
	"github.com/arefin/flowboard/internal/service"
)

// Server owns the router, the database connection, and the realtime hub.
// Both resources are closed during shutdown: the hub first so no publisher
// writes to a closing socket, the database last so pending WAL frames are
// flushed.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	hub    *realtime.Hub
}

// New opens the database and wires every layer. Construction order follows
// the dependency chain: db, stores, token/password services, domain
// services, hub, handlers, routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenServiceWithTTL(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordServiceWithCost(s.config.BcryptCost)

	users := s.db.Users()
	boards := s.db.Boards()
	lists := s.db.Lists()
	tasks := s.db.Tasks()
	activity := s.db.Activity()

	// The board service doubles as the hub's join authorizer, and the hub is
	// every mutating service's notifier. The board service itself gets the
	// hub too, so member additions show up live. Constructed in two steps to
	// break the cycle.
	authService := service.NewAuthService(users, tokens, passwords, s.logger)

	boardService := service.NewBoardService(boards, users, activity, nil, s.logger)
	s.hub = realtime.NewHub(boardService, s.logger)
	boardService.SetNotifier(s.hub)

	listService := service.NewListService(lists, boards, users, activity, s.hub, s.logger)
	taskService := service.NewTaskService(tasks, lists, boards, users, activity, s.hub, s.logger)
	activityService := service.NewActivityService(activity, boards, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	boardHandler := handler.NewBoardHandler(boardService, s.logger)
	listHandler := handler.NewListHandler(listService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)
	activityHandler := handler.NewActivityHandler(activityService, s.logger)
	wsHandler := handler.NewWSHandler(s.hub, tokens, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// The socket authenticates itself before upgrading, so it sits
		// outside RequireAuth; everything else below requires a session.
		r.Get("/ws", wsHandler.HandleConnect)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/boards", boardHandler.HandleList)
			r.Post("/boards", boardHandler.HandleCreate)
			r.Get("/boards/{id}", boardHandler.HandleGet)
			r.Patch("/boards/{id}", boardHandler.HandleUpdate)
			r.Delete("/boards/{id}", boardHandler.HandleDelete)
			r.Post("/boards/{id}/members", boardHandler.HandleAddMember)
			r.Delete("/boards/{id}/members/{userID}", boardHandler.HandleRemoveMember)
			r.Get("/boards/{id}/activity", activityHandler.HandleListForBoard)

			r.Get("/boards/{id}/lists", listHandler.HandleListForBoard)
			r.Post("/boards/{id}/lists", listHandler.HandleCreate)
			r.Patch("/lists/{id}", listHandler.HandleUpdate)
			r.Delete("/lists/{id}", listHandler.HandleDelete)

			r.Get("/lists/{id}/tasks", taskHandler.HandleListForList)
			r.Post("/lists/{id}/tasks", taskHandler.HandleCreate)
			r.Patch("/tasks/{id}", taskHandler.HandleUpdate)
			r.Delete("/tasks/{id}", taskHandler.HandleDelete)
			r.Post("/tasks/{id}/move", taskHandler.HandleMove)
			r.Post("/tasks/{id}/assign", taskHandler.HandleAssign)
		})
	})

	return nil
}

// Start runs the server until a signal arrives, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the hub's
// websockets, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.hub.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
