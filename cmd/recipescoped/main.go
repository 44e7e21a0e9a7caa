// Command recipescoped is the hosted Recipescope service.
// It serves the report ingest and read API, the GitHub webhook endpoint,
// Prometheus metrics, and a health check.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/recipescope/recipescope/internal/api"
	"github.com/recipescope/recipescope/internal/catalog"
	"github.com/recipescope/recipescope/internal/ingestion"
	"github.com/recipescope/recipescope/internal/platform"
	ghsurface "github.com/recipescope/recipescope/internal/surface"
	"github.com/recipescope/recipescope/internal/webhook"
	"github.com/recipescope/recipescope/pkg/config"
	"github.com/recipescope/recipescope/pkg/metrics"
)

type daemonConfig struct {
	Port        string
	DatabaseURL string
	APIKey      string

	Storage   config.StorageConfig
	AccessKey string
	SecretKey string

	GitHubAppID   string
	GitHubKey     string
	WebhookSecret string

	Criteria metrics.Criteria
}

// loadConfig reads the optional criteria file named by CONFIG, then applies
// environment overrides.
func loadConfig() (daemonConfig, error) {
	file := config.DefaultConfig()
	if path := os.Getenv("CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return daemonConfig{}, err
		}
		file = loaded
	}

	storage := file.Storage
	storage.Backend = envOrDefault("STORAGE_BACKEND", storage.Backend)
	storage.Path = envOrDefault("LOCAL_STORAGE_PATH", storage.Path)
	storage.Region = envOrDefault("S3_REGION", storage.Region)
	storage.Endpoint = envOrDefault("S3_ENDPOINT", storage.Endpoint)
	switch storage.Backend {
	case "s3":
		storage.Bucket = envOrDefault("S3_BUCKET", storage.Bucket)
	case "gcs":
		storage.Bucket = envOrDefault("GCS_BUCKET", storage.Bucket)
	}

	return daemonConfig{
		Port:          envOrDefault("PORT", firstNonEmpty(file.Server.Port, "8080")),
		DatabaseURL:   envOrDefault("DATABASE_URL", "postgres://localhost:5432/recipescope?sslmode=disable"),
		APIKey:        envOrDefault("API_KEY", file.Server.APIKey),
		Storage:       storage,
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		GitHubAppID:   os.Getenv("GITHUB_APP_ID"),
		GitHubKey:     os.Getenv("GITHUB_PRIVATE_KEY"),
		WebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		Criteria:      file.MetricsCriteria(),
	}, nil
}

// newStorage builds the blob store selected by the config.
func newStorage(ctx context.Context, cfg daemonConfig) (ingestion.StorageClient, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return ingestion.NewLocalStorage(cfg.Storage.Path), nil
	case "s3":
		s, err := ingestion.NewS3Storage(ctx, ingestion.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gcs":
		s, err := ingestion.NewGCSStorage(ctx, cfg.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newPublisher returns nil when no GitHub App is configured.
func newPublisher(cfg daemonConfig) (ingestion.Publisher, error) {
	if cfg.GitHubAppID == "" || cfg.GitHubKey == "" {
		return nil, nil
	}
	appID, err := strconv.ParseInt(cfg.GitHubAppID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse GITHUB_APP_ID: %w", err)
	}
	publisher, err := ghsurface.NewGitHubPublisher(appID, []byte(cfg.GitHubKey))
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	if closer, ok := storage.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatalf("init github publisher: %v", err)
	}
	if publisher == nil {
		log.Printf("GitHub App not configured; check runs disabled")
	}

	// Initialize services
	catalogSvc := catalog.NewService(db)
	ingestionSvc := ingestion.NewService(catalogSvc, storage, metrics.NewEngine(cfg.Criteria), publisher)

	handler := api.NewHandler(catalogSvc, ingestionSvc, api.NewReportCacheFromEnv())
	handler.Health = healthCheck(db)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, cfg.APIKey)
	if cfg.WebhookSecret != "" {
		mux.Handle("POST /v1/webhooks/github", webhook.NewHandler([]byte(cfg.WebhookSecret), catalogSvc, ingestionSvc))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.CORS(api.Instrument(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting recipescoped on :%s (storage: %s)", cfg.Port, firstNonEmpty(cfg.Storage.Backend, "local"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// healthCheck pings the database and rejects a dirty schema.
func healthCheck(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		version, dirty, err := platform.SchemaVersion(db)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		return nil
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
