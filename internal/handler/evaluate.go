package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model/dto"
	"github.com/deadpanpulley/alarm-nosnooze/internal/service"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/response"
)

// Evaluate 手动触发一轮扫描。正常由 scheduler 进程定时驱动，
// 这个入口给运维和客户端「闹钟没响」时的主动补扫用。
// POST /v1/evaluate
func Evaluate(ctx context.Context, c *app.RequestContext) {
	now := time.Now()

	fired, err := service.TriggerEvaluator().Evaluate(ctx, now)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.EvaluateResponse{
		Fired:     fired,
		CheckedAt: now,
	})
}
