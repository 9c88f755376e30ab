package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dataset-artifact-service/internal/adapters/primary/http/handlers"
	"dataset-artifact-service/internal/adapters/primary/http/middleware"
	"dataset-artifact-service/internal/adapters/secondary/engine/builtin"
	"dataset-artifact-service/internal/adapters/secondary/engine/command"
	"dataset-artifact-service/internal/adapters/secondary/engine/remote"
	"dataset-artifact-service/internal/adapters/secondary/filestore"
	"dataset-artifact-service/internal/adapters/secondary/memory"
	"dataset-artifact-service/internal/adapters/secondary/objectstore"
	"dataset-artifact-service/internal/adapters/secondary/postgres"
	"dataset-artifact-service/internal/adapters/secondary/prometheus"
	"dataset-artifact-service/internal/config"
	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
	"dataset-artifact-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)
	ctx := context.Background()

	// ============================================================================
	// Secondary Adapters
	// ============================================================================

	store, err := filestore.New(cfg.Storage.Root, filestore.Layout(cfg.Storage.Layout))
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	log.WithFields(log.Fields{"root": store.Root(), "layout": cfg.Storage.Layout}).Info("artifact storage ready")

	processor, err := newProcessor(cfg, store)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	log.WithField("kind", cfg.Engine.Kind).Info("analytical engine configured")

	// Upload catalog (Postgres when enabled, in-memory otherwise)
	var catalog output.UploadRepository
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		pool, err = newPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		defer pool.Close()
		catalog = postgres.NewUploadRepository(pool)
		log.Info("database connection established")
	} else {
		catalog = memory.NewUploadRepository()
		log.Info("database disabled, using in-memory upload catalog")
	}

	// Artifact mirror (Optional - based on config)
	opts := []services.UploadOption{
		services.WithNameHints(domain.NameHints{
			Normalized:     cfg.Engine.NormalizedName,
			Classification: cfg.Engine.ClassificationName,
			Parallel:       cfg.Engine.ParallelName,
		}),
		services.WithDefaultDataset(cfg.Storage.DefaultDataset),
	}
	if cfg.MinIO.Enabled {
		mirror, err := objectstore.NewMirror(ctx, &cfg.MinIO)
		if err != nil {
			log.Warnf("MinIO mirror init failed (continuing without mirroring): %v", err)
		} else {
			opts = append(opts, services.WithMirror(mirror))
			log.WithField("bucket", cfg.MinIO.Bucket).Info("MinIO mirror initialized")
		}
	} else {
		log.Info("MinIO mirror disabled")
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, services.WithMetrics(prometheus.NewUploadMetrics()))
	}

	// ============================================================================
	// Core Services
	// ============================================================================

	dispatcher := services.NewDispatcher(processor, store)
	uploadSvc := services.NewUploadService(store, dispatcher, catalog, opts...)
	artifactSvc := services.NewArtifactService(store)
	catalogSvc := services.NewCatalogService(catalog)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(uploadSvc, artifactSvc, catalogSvc, cfg.Storage.MaxUploadBytes)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	router.Use(gin.Recovery())

	h.RegisterRoutes(router)

	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: middleware.CORS(cfg.CORS.AllowedOrigin)(router),
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newProcessor(cfg *config.Config, store output.ArtifactStore) (output.Processor, error) {
	switch cfg.Engine.Kind {
	case config.EngineCommand:
		return command.New(cfg.Engine.Command, cfg.Engine.Timeout)
	case config.EngineRemote:
		return remote.NewClient(&cfg.Engine), nil
	default:
		return builtin.New(store), nil
	}
}

func newPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
