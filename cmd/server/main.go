package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	revocationstore "concord/internal/auth/store/revocation"
	jwttoken "concord/internal/jwt_token"
	"concord/internal/platform/config"
	"concord/internal/platform/httpserver"
	"concord/internal/platform/logger"
	"concord/internal/platform/metrics"
	"concord/internal/platform/middleware"
	platformredis "concord/internal/platform/redis"
	registryhandler "concord/internal/registry/handler"
	registrymetrics "concord/internal/registry/metrics"
	registryservice "concord/internal/registry/service"
	httptransport "concord/internal/transport/http"
	"concord/pkg/domain"
	auditpublisher "concord/pkg/platform/audit/publisher"
	kafkaaudit "concord/pkg/platform/audit/publishers/kafka"
	auditmemory "concord/pkg/platform/audit/store/memory"
	auditpostgres "concord/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	bootstrap, err := resolveBootstrapAdmin(cfg)
	if err != nil {
		log.Error("invalid bootstrap admin", "error", err)
		os.Exit(1)
	}
	if cfg.BootstrapAdmin == "" {
		log.Warn("no bootstrap admin configured, generated one for development",
			"identity", bootstrap.String(),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit trail: in-memory read model, with optional durable fan-out.
	auditStore := auditmemory.NewInMemoryStore()
	publisherOpts := []auditpublisher.Option{
		auditpublisher.WithLogger(log),
		auditpublisher.WithAsyncBuffer(256),
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(auditpostgres.New(pool)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkaaudit.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(producer))
	}

	publisher := auditpublisher.NewPublisher(auditStore, publisherOpts...)
	defer publisher.Close()

	regMetrics := registrymetrics.New()
	registry, err := registryservice.New(bootstrap,
		registryservice.WithLogger(log),
		registryservice.WithAuditPublisher(publisher),
		registryservice.WithMetrics(regMetrics),
	)
	if err != nil {
		log.Error("failed to initialize role registry", "error", err)
		os.Exit(1)
	}
	log.Info("role registry initialized", "bootstrap_admin", bootstrap.String())

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var revocation middleware.TokenRevocationChecker
	var redisHealth httptransport.HealthChecker
	if redisClient != nil {
		defer redisClient.Close()
		revocation = revocationstore.NewRedisTRL(redisClient.Client)
		redisHealth = redisClient
	}

	handler := registryhandler.New(registry, auditStore, log, jwtService, revocation)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(),
		Registry: registry,
		Handler:  handler,
		Redis:    redisHealth,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting concord registry", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func resolveBootstrapAdmin(cfg config.Config) (domain.Identity, error) {
	if cfg.BootstrapAdmin == "" {
		return domain.NewIdentity(), nil
	}
	return domain.ParseIdentity(cfg.BootstrapAdmin)
}
