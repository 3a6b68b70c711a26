package app

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campuslib/library-service/config"
	"github.com/campuslib/library-service/internal/events"
	"github.com/campuslib/library-service/internal/handler"
	"github.com/campuslib/library-service/internal/repository"
	"github.com/campuslib/library-service/internal/server"
	"github.com/campuslib/library-service/internal/service"
	"github.com/campuslib/library-service/migrations"
	"github.com/campuslib/library-service/pkg/auth0"
	"github.com/campuslib/library-service/pkg/kafka"
	"github.com/campuslib/library-service/pkg/logger"
	md "github.com/campuslib/library-service/pkg/middleware"
	"github.com/campuslib/library-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			// role lookups degrade to the db; not fatal
			log.Warn("redis ping, running without role cache", zap.Error(err))
			cache = nil
		}
	}

	repo, err := repository.NewRepository(db, cache, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	publisher := events.NewPublisher(producer, log)

	catalogSvc := service.NewCatalogService(repo, log)
	circulationSvc := service.NewCirculationService(repo, publisher, log)
	reservationSvc := service.NewReservationService(repo, log)
	userSvc := service.NewUserService(repo, log)
	reviewSvc := service.NewReviewService(repo, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.ReservationConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumer", zap.Error(err))
	}

	var authMW echo.MiddlewareFunc = md.JwtAuthentication
	switch {
	case cfg.Auth0.Enabled:
		authMW = auth0.MiddleWareWithConfig(cfg.Auth0)
	case cfg.Auth.TrustGatewayHeaders:
		authMW = md.HeaderAuthContext
	}

	h := handler.New(catalogSvc, circulationSvc, reservationSvc, userSvc, reviewSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(authMW))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		kafka.Consume(gctx, consumer,
			handler.NewConsumer(reservationSvc.HandleBookAvailable, log),
			log, kafka.AvailabilityTopic)
		return nil
	})

	<-ctx.Done()
	log.Debug("Graceful shutdown")

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		log.Error("run", zap.Error(err))
	}
	if err := consumer.Close(); err != nil {
		log.Error("consumer.Close", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
