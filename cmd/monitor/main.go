package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/config"
	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/feed"
	appgrpc "github.com/CoolE88/patient-monitor-service/internal/grpc"
	apphttp "github.com/CoolE88/patient-monitor-service/internal/http"
	applogger "github.com/CoolE88/patient-monitor-service/internal/logger"
	"github.com/CoolE88/patient-monitor-service/internal/mqttclient"
	"github.com/CoolE88/patient-monitor-service/internal/notifier"
	"github.com/CoolE88/patient-monitor-service/internal/repository/memory"
	"github.com/CoolE88/patient-monitor-service/internal/repository/postgres"
	"github.com/CoolE88/patient-monitor-service/internal/repository/sqlite"
	"github.com/CoolE88/patient-monitor-service/internal/service"
	"github.com/CoolE88/patient-monitor-service/internal/worker"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type closableStore interface {
	service.Store
	Close()
}

func main() {
	// Создаём отменяемый контекст для всего приложения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}
	cfg := config.LoadConfig()

	logger, err := applogger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error during logger sync: %v", err)
		}
	}()

	logger.Info("Starting Patient Monitor Service",
		zap.String("version", "1.0.0"),
		zap.String("store", cfg.StoreDriver))

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open patient store", zap.Error(err))
		return
	}
	defer func() {
		store.Close()
		logger.Info("Patient store closed")
	}()

	var mqttClient mqtt.Client
	if contains(cfg.Notifier.Channels, "mqtt") {
		mqttClient, err = mqttclient.Connect(cfg.MQTT, "alerts", nil, logger)
		if err != nil {
			logger.Error("Failed to connect to MQTT broker", zap.Error(err))
			return
		}
		defer mqttClient.Disconnect(250)
	}

	alerts, err := newNotifier(cfg, mqttClient, logger)
	if err != nil {
		logger.Error("Failed to configure notifiers", zap.Error(err))
		return
	}

	svc := service.New(store, alerts, logger)

	// Запуск HTTP сервера
	httpServer := apphttp.NewHTTPServer(cfg.RESTPort, svc, logger)
	go func() {
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			return
		}
	}()

	// Запуск GRPC сервера
	grpcServer := appgrpc.NewGRPCServer(svc, logger)
	go func() {
		if err := grpcServer.Start(cfg.GRPCPort); err != nil {
			logger.Error("gRPC server failed", zap.Error(err))
			return
		}
	}()

	// Воркеры для показаний с устройств
	observations := make(chan *domain.Observation, cfg.QueueSize)
	pool := worker.NewPool(svc.VitalsMonitor, cfg.WorkerCount, logger)
	pool.Start(ctx, observations)

	if cfg.MQTT.FeedEnabled {
		subscriber := feed.NewSubscriber(cfg.MQTT.FeedTopic, observations, logger)
		feedClient, err := mqttclient.Connect(cfg.MQTT, "feed", subscriber.Subscribe, logger)
		if err != nil {
			logger.Error("Failed to connect device feed", zap.Error(err))
		} else {
			defer feedClient.Disconnect(250)
		}
	}

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down servers...")

	cancel()

	pool.Stop()
	pool.Wait()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("gRPC server shutdown due to timeout")
		} else {
			logger.Error("gRPC server shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Patient Monitor Service stopped")
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (closableStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memory.NewRepository(), nil
	case "postgres":
		return postgres.NewPostgresRepository(ctx, cfg.DBConfig, logger)
	case "sqlite":
		return sqlite.NewSQLiteRepository(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newNotifier(cfg *config.Config, client mqtt.Client, logger *zap.Logger) (notifier.Notifier, error) {
	var channels notifier.Multi
	for _, name := range cfg.Notifier.Channels {
		switch name {
		case "log":
			channels = append(channels, notifier.NewLog(logger))
		case "webhook":
			if cfg.Notifier.WebhookURL == "" {
				return nil, errors.New("webhook notifier requires WEBHOOK_URL")
			}
			channels = append(channels, notifier.NewWebhook(cfg.Notifier.WebhookURL, cfg.Notifier.WebhookTimeout, logger))
		case "mqtt":
			channels = append(channels, notifier.NewMQTT(client, cfg.MQTT.AlertTopic, logger))
		default:
			return nil, fmt.Errorf("unknown notifier %q", name)
		}
	}
	return channels, nil
}

func contains(items []string, item string) bool {
	for _, v := range items {
		if v == item {
			return true
		}
	}
	return false
}
