package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/reports"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/metrics"
	audithandler "perfeval/internal/transport/http/handlers/audit"
	authhandler "perfeval/internal/transport/http/handlers/auth"
	evaluationhandler "perfeval/internal/transport/http/handlers/evaluation"
	"perfeval/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New builds a fully wired application. Callers own the pool: Close
// releases it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()
	authStore := auth.NewStore(pool)
	evaluationService := evaluation.NewService(evaluation.NewStore(pool))
	reportsService := reports.NewService(reports.NewStore(pool))
	auditService := audit.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	// Auth must run before the rate limiter so authenticated callers are
	// budgeted per user rather than sharing the client-IP bucket.
	router.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			writeMetrics(w, collector)
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret).RegisterRoutes(r)
		evaluationhandler.NewHandler(evaluationService, reportsService, authStore, auditService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func writeMetrics(w http.ResponseWriter, collector *metrics.Collector) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
		log.Printf("metrics write failed: %v", err)
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}
	defer app.Close()

	log.Printf("perfeval server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
