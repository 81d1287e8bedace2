package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/riegolab/riego/config"
	"github.com/riegolab/riego/internal/health"
	"github.com/riegolab/riego/internal/infrastructure/postgres"
	ctxlog "github.com/riegolab/riego/internal/log"
	"github.com/riegolab/riego/internal/metrics"
	"github.com/riegolab/riego/internal/mqtt"
	"github.com/riegolab/riego/internal/resync"
	"github.com/riegolab/riego/internal/schedule"
	httptransport "github.com/riegolab/riego/internal/transport/http"
	"github.com/riegolab/riego/internal/transport/http/handler"
	"github.com/riegolab/riego/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// MQTT is optional: without a broker the service still serves reads
	// and persists mutations, it just cannot reach controllers.
	var mqttClient paho.Client
	var publisher mqtt.Publisher
	if cfg.MQTTEnabled {
		mqttClient, err = mqtt.Connect(cfg.MQTTURL, cfg.MQTTClientID, logger)
		if err != nil {
			stop()
			log.Fatalf("mqtt: %v", err)
		}
		publisher = &mqtt.ClientPublisher{Client: mqttClient}
	}
	gateway := mqtt.NewGateway(publisher, logger)

	// Repositories
	agendaRepo := postgres.NewAgendaRepository(pool, logger)
	zoneRepo := postgres.NewZoneConfigRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	// Usecases
	cache := schedule.NewStatusCache()
	agendaUsecase := usecase.NewAgendaUsecase(agendaRepo, gateway, logger)
	statusUsecase := usecase.NewStatusUsecase(agendaRepo, zoneRepo, cache, loc, logger)
	zoneUsecase := usecase.NewZoneConfigUsecase(zoneRepo, logger)
	eventUsecase := usecase.NewEventUsecase(eventRepo, logger)

	// Handlers
	agendaHandler := handler.NewAgendaHandler(agendaUsecase, logger)
	statusHandler := handler.NewStatusHandler(statusUsecase, agendaUsecase, logger)
	zoneHandler := handler.NewZoneHandler(zoneUsecase, logger)
	eventHandler := handler.NewEventHandler(eventUsecase, logger)

	// Inbound MQTT
	if mqttClient != nil {
		subscriber := mqtt.NewSubscriber(mqttClient, statusUsecase, eventUsecase, logger)
		if err := subscriber.Start(); err != nil {
			stop()
			log.Fatalf("mqtt subscribe: %v", err)
		}
	}

	// Periodic resync so controllers recover from missed broadcasts.
	broadcaster := resync.NewBroadcaster(agendaRepo, gateway, logger)
	if err := broadcaster.Start(cfg.ResyncCron); err != nil {
		stop()
		log.Fatalf("resync: %v", err)
	}

	metrics.Register()
	var reporter health.ConnectionReporter
	if mqttClient != nil {
		reporter = mqttClient
	}
	checker := health.NewChecker(pool, reporter, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, agendaHandler, statusHandler, zoneHandler, eventHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	broadcaster.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
