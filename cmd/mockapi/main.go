package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"post-manager/api/router"
	"post-manager/config"
	"post-manager/db"
	_ "post-manager/docs" // swag will generate this package
	"post-manager/internal/logger"
	"post-manager/internal/telemetry"
	"post-manager/repositories"
	"post-manager/services"
)

// @title           Post Manager mock API
// @version         1.0
// @description     jsonplaceholder-compatible /posts resource for local development
// @BasePath        /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init("mockapi", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, "mockapi")
	if err != nil {
		log.Fatal(err)
	}
	defer shutdownTracing(context.Background())

	var (
		repo services.PostRepository
		ping router.PingFunc
	)
	switch cfg.MockAPI.Storage {
	case "mongo":
		if err := db.Init(ctx, cfg.MockAPI); err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())
		repo = repositories.NewPostRepository(db.Database())
		ping = db.Ping
	default:
		repo = repositories.NewMemoryPostRepository()
	}

	svc := services.NewPostService(repo)
	if err := svc.Seed(ctx, cfg.MockAPI.SeedCount); err != nil {
		log.Fatal(err)
	}

	r := router.New(svc, ping)
	srv := &http.Server{
		Addr:              cfg.MockAPI.Addr,
		Handler:           router.WithCORS(otelhttp.NewHandler(r, "mockapi")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("mockapi listening", logger.Fields{
			"addr":    cfg.MockAPI.Addr,
			"storage": cfg.MockAPI.Storage,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("mockapi shutdown failed", logger.Fields{"error": err.Error()})
	}
}
