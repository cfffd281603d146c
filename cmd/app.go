package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/LetzTalk/internal/application/config"
	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/application/metric"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/memory"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/postgres"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/handlers"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/server"
	"github.com/qrave1/LetzTalk/internal/usecase"
)

func runApp() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		return fmt.Errorf("parse config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.Bool("moderation", cfg.ModerationEnabled))

	connRepo := memory.NewConnectionRepository()
	matchQueue := memory.NewMatchQueue()
	pairRoomRepo := memory.NewPairRoomRepository()
	socialRoomRepo := memory.NewSocialRoomRepository(cfg.Broker.RoomCodeAttempts)

	brokerUsecase := usecase.NewBrokerUsecase(connRepo, matchQueue, pairRoomRepo, socialRoomRepo)

	var moderationHandler *handlers.ModerationHandler

	if cfg.ModerationEnabled {
		dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN(), cfg.Postgres.ConnectAttempts)
		if err != nil {
			slog.Error("connect to postgres", slog.Any(constant.Error, err))
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer dbConn.Close()

		moderationUsecase := usecase.NewModerationUsecase(
			repository.NewReportRepo(dbConn),
			repository.NewBlockRepo(dbConn),
			brokerUsecase,
		)

		moderationHandler = handlers.NewModerationHandler(moderationUsecase)
	}

	healthHandler := handlers.NewHealthHandler(brokerUsecase)
	iceHandler := handlers.NewIceHandler(cfg)
	wsHandler := handlers.NewWebSocketHandler(cfg, brokerUsecase)

	echoSrv := server.New(cfg, healthHandler, iceHandler, wsHandler, moderationHandler)

	metricsSrv := metric.NewServer(brokerUsecase.Stats)

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	// Запускаем HTTP сервер
	go func() {
		slog.Info("HTTP server starting", slog.String("port", cfg.Port))
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	// Запускаем сервер метрик
	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	// Ожидаем сигнал завершения или ошибку сервера
	var runErr error

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		runErr = fmt.Errorf("http server: %w", err)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		runErr = fmt.Errorf("metrics server: %w", err)
	}

	// Graceful shutdown. Контекст сигнала уже отменен, поэтому таймаут от Background
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}

	return runErr
}
