package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/config"
	"github.com/nimasrn/webhook-gateway/internal/dispatch"
	"github.com/nimasrn/webhook-gateway/internal/handlers"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/queue"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/internal/resolver"
	"github.com/nimasrn/webhook-gateway/internal/services"
	xhttp "github.com/nimasrn/webhook-gateway/pkg/http"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"github.com/nimasrn/webhook-gateway/pkg/prom"
	"github.com/nimasrn/webhook-gateway/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	// Redis is optional: without it the receiver runs with no binding
	// cache and processes every webhook inline.
	var redisAdap redis.RedisAdapter
	if config.Get().RedisAddr != "" {
		redisAdap, err = redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Warn("failed connecting to redis, running without queue and cache", "error", err)
			redisAdap = nil
		}
	}

	var bindingCache *resolver.BindingCache
	var q *queue.Queue
	if redisAdap != nil {
		bindingCache = resolver.NewBindingCache(redisAdap, config.Get().BindingCacheTTL)

		if config.Get().QueueEnabled {
			q, err = queue.NewQueue(redisAdap, queue.QueueConfig{
				Name:              config.Get().QueueName,
				ConsumerGroup:     config.Get().QueueConsumerGroup,
				ConsumerName:      config.Get().QueueConsumerName,
				MaxRetries:        config.Get().QueueMaxRetries,
				VisibilityTimeout: config.Get().QueueVisibilityTimeout,
				PollInterval:      config.Get().QueuePollInterval,
				BatchSize:         config.Get().QueueBatchSize,
				MaxLen:            config.Get().QueueMaxLen,
				EnableDLQ:         config.Get().QueueEnableDLQ,
			})
			if err != nil {
				logger.Error("failed creating queue, webhooks will process inline", "error", err)
				q = nil
			}
		}
	}

	vendorRepo := repository.NewVendorRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	bindingRepo := repository.NewBindingRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	eventRepo := repository.NewMessageEventRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	pipe := pipeline.New(messageRepo, eventRepo, analyticsRepo)
	idResolver := resolver.New(projectRepo, vendorRepo, channelRepo, bindingRepo, bindingCache)
	controller := dispatch.NewController(publisherOrNil(q), pipe)
	backfillJob := pipeline.NewBackfill(eventRepo, vendorRepo, channelRepo, config.Get().BackfillBatchSize)

	// services
	webhookService := services.NewWebhookService(idResolver, controller)
	healthService := services.NewHealthService()

	// v1 handlers
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	healthHandler := handlers.NewHealthHandler(healthService)
	backfillHandler := handlers.NewBackfillHandler(backfillJob)

	handlers.RegisterWebhookRoutes(s.Router, webhookHandler)
	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, healthHandler)
	admin := s.Router.Group("/admin")
	handlers.RegisterBackfillRoutes(admin, backfillHandler)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go func() {
		prom.ListenAndServer(":9101", "/metrics")
	}()

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func publisherOrNil(q *queue.Queue) dispatch.Publisher {
	if q == nil {
		return nil
	}
	return q
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
