package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/deadpanpulley/alarm-nosnooze/internal/handler"
	"github.com/deadpanpulley/alarm-nosnooze/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 闹钟定义路由
	alarms := v1.Group("/alarms")
	{
		alarms.GET("", handler.ListAlarms)
		alarms.POST("", handler.CreateAlarm)
		alarms.GET("/:alarm_id", handler.GetAlarm)
		alarms.PATCH("/:alarm_id", handler.UpdateAlarm)
		alarms.DELETE("/:alarm_id", handler.DeleteAlarm)
		alarms.POST("/:alarm_id/toggle", handler.ToggleAlarm)

		// 响铃会话路由
		alarms.GET("/:alarm_id/ring", handler.GetRing)
		alarms.POST("/:alarm_id/ring/open", handler.OpenChallenge)
		alarms.POST("/:alarm_id/ring/attempt", middleware.AttemptRateLimitMiddleware(), handler.AttemptChallenge)
		alarms.POST("/:alarm_id/ring/snooze", handler.SnoozeAlarm)
	}

	// 手动触发一轮评估
	v1.POST("/evaluate", handler.Evaluate)
}
