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

	"post-manager/cmd/web/clients/postsclient"
	"post-manager/cmd/web/page"
	"post-manager/cmd/web/postsapi"
	"post-manager/cmd/web/router"
	"post-manager/cmd/web/session"
	"post-manager/config"
	"post-manager/eventbus"
	"post-manager/internal/logger"
	"post-manager/internal/telemetry"
	"post-manager/internal/trace"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init("web", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, "web")
	if err != nil {
		log.Fatal(err)
	}
	defer shutdownTracing(context.Background())

	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	states, err := newStateStore(ctx, cfg.Web.Session)
	if err != nil {
		log.Fatal(err)
	}

	instanceID := trace.GenerateID()
	client := postsclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	store := postsapi.NewStore(client, postsapi.Options{
		CacheTTL:     cfg.API.CacheTTL,
		FetchTimeout: cfg.API.Timeout,
		InstanceID:   instanceID,
		Bus:          bus,
	})
	go func() {
		groupID := "post-manager-web-" + instanceID
		if err := store.WatchRemote(ctx, groupID); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorWithFields("remote invalidation watcher stopped", logger.Fields{"error": err.Error()})
		}
	}()

	ctrl := page.NewController(store, states, page.Config{
		PageSize:      cfg.Web.PageSize,
		PageStep:      cfg.Web.PageStep,
		DefaultUserID: cfg.Web.DefaultUserID,
		BusyTimeout:   2 * cfg.API.Timeout,
	})

	r := router.New(router.Deps{
		Controller:    ctrl,
		Health:        client,
		ListWait:      cfg.Web.ListWait,
		SessionCookie: cfg.Web.Session.CookieName,
		SessionTTL:    cfg.Web.Session.TTL,
	})
	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           otelhttp.NewHandler(r, "web"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("web listening", logger.Fields{
			"addr":        cfg.Web.Addr,
			"posts_api":   cfg.API.BaseURL,
			"session":     cfg.Web.Session.Backend,
			"eventbus":    cfg.EventBus.Enabled,
			"instance_id": instanceID,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("web shutdown failed", logger.Fields{"error": err.Error()})
	}
}

// newEventBus 는 Kafka 가 설정되어 있으면 Kafka 버스를, 아니면 프로세스 내부 버스를 반환한다.
func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if !cfg.Enabled {
		return eventbus.NewMemoryEventBus(), nil
	}
	if err := eventbus.EnsureTopics(cfg.Brokers, cfg.TopicPartitions, eventbus.AllTopics...); err != nil {
		return nil, err
	}
	bus, err := eventbus.NewKafkaEventBus(cfg.Brokers)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

func newStateStore(ctx context.Context, cfg config.SessionConfig) (page.StateStore, error) {
	switch cfg.Backend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(rdb, cfg.TTL), nil
	default:
		mem := session.NewMemoryStore(cfg.TTL)
		go mem.RunSweeper(ctx, 10*time.Minute)
		return mem, nil
	}
}
