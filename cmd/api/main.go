package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/voiceunleashed/fluency/internal/application"
	appaccount "github.com/voiceunleashed/fluency/internal/application/account"
	appanalysis "github.com/voiceunleashed/fluency/internal/application/analysis"
	"github.com/voiceunleashed/fluency/internal/config"
	"github.com/voiceunleashed/fluency/internal/domain/history"
	openaiclient "github.com/voiceunleashed/fluency/internal/infra/ai/openai"
	mysqlp "github.com/voiceunleashed/fluency/internal/infra/db/mysql"
	postgresp "github.com/voiceunleashed/fluency/internal/infra/db/postgres"
	"github.com/voiceunleashed/fluency/internal/infra/googleauth"
	"github.com/voiceunleashed/fluency/internal/infra/httpserver"
	identityclient "github.com/voiceunleashed/fluency/internal/infra/identity"
	mailclient "github.com/voiceunleashed/fluency/internal/infra/mail"
	"github.com/voiceunleashed/fluency/internal/infra/speech"
	minioStore "github.com/voiceunleashed/fluency/internal/infra/storage"
	"github.com/voiceunleashed/fluency/internal/infra/videointel"
	"github.com/voiceunleashed/fluency/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect history database (driver chosen in config)
	db, repo, err := connectHistory(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	// init minio media bucket
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// one authenticated client for both annotation services
	gclient, err := googleauth.NewClient(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		log.Fatalf("google auth error: %v", err)
	}
	transcriber := speech.NewClient(gclient, cfg.PollIntervalDuration(), cfg.PollTimeoutDuration())
	faces := videointel.NewClient(gclient, cfg.PollIntervalDuration(), cfg.PollTimeoutDuration())

	// generative feedback + identity + mail
	coach := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	verifier := identityclient.NewClient(cfg.Identity.APIKey)
	mailer := mailclient.NewClient(cfg.Mail.APIKey, cfg.Mail.From)

	// init services
	analysisSvc := &appanalysis.Service{
		Media:   store,
		Speech:  transcriber,
		Faces:   faces,
		Coach:   coach,
		History: repo,
		Clock:   application.SystemClock{},
	}
	accountSvc := &appaccount.Service{
		History: repo,
		Ident:   verifier,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 1))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"bucket":   middleware.CheckerFunc(store.Ping),
	}))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(analysisSvc, accountSvc, mailer, verifier))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// Analysis requests wait on long-running annotation jobs, so
		// the write timeout must cover the poll deadline.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.PollTimeoutDuration() + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func connectHistory(ctx context.Context, cfg *config.Config) (*sql.DB, history.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgresp.NewHistoryRepository(db), nil
	case "", "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewHistoryRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
