package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model/dto"
	"github.com/deadpanpulley/alarm-nosnooze/internal/service"
	pkgerrors "github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/response"
)

// ListAlarms 列出全部闹钟
// GET /v1/alarms
func ListAlarms(ctx context.Context, c *app.RequestContext) {
	result, err := service.Alarms().List(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"count": len(result),
	})
}

// CreateAlarm 创建闹钟
// POST /v1/alarms
func CreateAlarm(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateAlarmRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Alarms().Create(ctx, req)
	if err == pkgerrors.CapabilityUnavailable && result != nil {
		// 激活意图已保存，只是当前没布防成
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
			"alarm": result,
		})
		return
	}
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetAlarm 查询单个闹钟
// GET /v1/alarms/:alarm_id
func GetAlarm(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	result, err := service.Alarms().Get(ctx, alarmID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// UpdateAlarm 部分更新闹钟定义
// PATCH /v1/alarms/:alarm_id
func UpdateAlarm(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	var req dto.UpdateAlarmRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Alarms().Update(ctx, alarmID, req)
	if err == pkgerrors.CapabilityUnavailable && result != nil {
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
			"alarm": result,
		})
		return
	}
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ToggleAlarm 布防或撤防
// POST /v1/alarms/:alarm_id/toggle
func ToggleAlarm(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	var req dto.ToggleAlarmRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Alarms().Toggle(ctx, alarmID, req.Active)
	if err == pkgerrors.CapabilityUnavailable && result != nil {
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
			"alarm": result,
		})
		return
	}
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// DeleteAlarm 删除闹钟
// DELETE /v1/alarms/:alarm_id
func DeleteAlarm(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	if err := service.Alarms().Delete(ctx, alarmID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 正在响铃的会话一并清掉
	if err := service.Dismissals().Drop(ctx, alarmID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
