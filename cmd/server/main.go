package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ayush/research-extractor/internal/config"
	"github.com/ayush/research-extractor/internal/metrics"
	"github.com/ayush/research-extractor/internal/middleware"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/provider"
	"github.com/ayush/research-extractor/internal/research"
	"github.com/ayush/research-extractor/internal/session"
)

const memorySessions = 1024

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// ── Sessions ─────────────────────────────────────────────
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal("redis connect", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info("Sessions in Redis", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore(memorySessions, cfg.SessionTTL)
		log.Info("Sessions in memory", "size", memorySessions)
	}

	// ── Metrics ──────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Research pipeline ────────────────────────────────────
	svc := research.NewService(provider.NewClients(cfg.OllamaHost), research.OptionsFromConfig(cfg, m))
	defaults := models.DefaultSettings(cfg.OllamaModel, cfg.GeminiModel)
	researchHandler := research.NewHandler(svc, sessions, defaults, cfg.GoogleAPIKey)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))

	// Web UI
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.SessionTTL))
		r.Get("/", researchHandler.Index)
		r.Post("/", researchHandler.Run)
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Post("/research", researchHandler.Create)
		r.Get("/examples", researchHandler.Examples)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: cfg.GenerationTimeout + time.Minute,
	}

	go func() {
		log.Info("Research Content Extractor listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
