package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/middleware"
	"github.com/deadpanpulley/alarm-nosnooze/internal/router"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	otelpkg "github.com/deadpanpulley/alarm-nosnooze/pkg/otel"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/snowflake"
	"github.com/deadpanpulley/alarm-nosnooze/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)

	var h *server.Hertz
	if config.Cfg.TracingEnabled {
		shutdown, err := otelpkg.InitOpenTelemetry(ctx, otelpkg.Config{
			ServiceName:  config.Cfg.ServiceName,
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.OTLPEndpoint,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := middleware.InitMetrics(otel.Meter("hertz-server")); err != nil {
			logger.Logger.Warn("Failed to initialize HTTP metrics", zap.Error(err))
		}

		tracerOpt, tracerMw := middleware.NewServerTracerConfig()
		h = server.Default(server.WithHostPorts(addr), tracerOpt)
		h.Use(tracerMw)
	} else {
		h = server.Default(server.WithHostPorts(addr))
	}

	router.Register(h)

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	// 优雅关闭：单独 goroutine 里等关闭信号再 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
