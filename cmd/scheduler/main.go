package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/service"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Int("interval_seconds", config.Cfg.EvaluateIntervalSeconds),
	)

	runEvaluateLoop(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runEvaluateLoop 按配置的间隔驱动触发评估。
// 扫描是 best-effort 的：错过的分钟不补，锁被别人拿着就跳过这轮。
func runEvaluateLoop(ctx context.Context) {
	interval := time.Duration(config.Cfg.EvaluateIntervalSeconds) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动时先扫一轮，别让用户等第一个 tick
	evaluateOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluateOnce(ctx)
		}
	}
}

func evaluateOnce(ctx context.Context) {
	now := time.Now()

	fired, err := service.TriggerEvaluator().Evaluate(ctx, now)
	if err == errors.EvaluateBusy {
		logger.Logger.Info("Evaluation pass skipped, another pass in flight")
		return
	}
	if err != nil {
		logger.Logger.Error("Evaluation pass failed", zap.Error(err))
		return
	}

	if fired {
		logger.Logger.Info("Evaluation pass completed with alarms fired",
			zap.Time("checked_at", now),
		)
	}
}
