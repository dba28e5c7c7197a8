package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/cellengine/backend-go/internal/auth"
	"github.com/inamate/cellengine/backend-go/internal/config"
	"github.com/inamate/cellengine/backend-go/internal/db"
	"github.com/inamate/cellengine/backend-go/internal/export"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
	mw "github.com/inamate/cellengine/backend-go/internal/middleware"
	"github.com/inamate/cellengine/backend-go/internal/project"
	"github.com/inamate/cellengine/backend-go/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))
	geometry.SetLogger(slog.Default().With("component", "geometry"))
	geometry.SetTolerances(cfg.Tolerances())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	queries := db.New(pool)

	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(queries)
	projectHandler := project.NewHandler(projectService)

	exportHandler := export.NewHandler(projectService)

	registry := session.NewRegistry(projectService)
	autosaveDone := make(chan struct{})
	go func() {
		registry.Run(ctx, cfg.AutosaveInterval)
		close(autosaveDone)
	}()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/session", authHandler.Session).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/snapshots/latest", projectHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/projects/{projectId}/snapshots", projectHandler.SaveSnapshot).Methods("PUT")
	api.HandleFunc("/projects/{projectId}/export.pdf", exportHandler.ExportPDF).Methods("GET")

	// WebSocket endpoint
	originHosts := cfg.OriginHosts()
	r.HandleFunc("/ws/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, registry, authService, projectService, originHosts)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		// Stop autosave last so open sessions are written once more.
		slog.Info("saving all documents...")
		cancel()
		<-autosaveDone
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-autosaveDone
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, registry *session.Registry, authSvc *auth.Service, projects *project.Service, originHosts []string) {
	projectID := mux.Vars(r)["projectId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	user, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := projects.Authorize(r.Context(), projectID, user.ID); err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		case errors.Is(err, project.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("authorize websocket", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	s, err := registry.Open(r.Context(), projectID, user.ID)
	if err != nil {
		if errors.Is(err, session.ErrSessionBusy) {
			http.Error(w, "project is already open", http.StatusConflict)
			return
		}
		slog.Error("open session", "error", err, "project", projectID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		_ = registry.Close(context.WithoutCancel(r.Context()), s)
		return
	}

	client := session.NewClient(registry, s, conn)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
