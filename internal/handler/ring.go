package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/deadpanpulley/alarm-nosnooze/internal/cache"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model/dto"
	"github.com/deadpanpulley/alarm-nosnooze/internal/service"
	pkgerrors "github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/response"
)

// GetRing 查询响铃会话状态
// GET /v1/alarms/:alarm_id/ring
func GetRing(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	sess, err := service.Dismissals().Get(ctx, alarmID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toRingResponse(ctx, sess))
}

// OpenChallenge 进入挑战界面：ringing -> challenge_active
// POST /v1/alarms/:alarm_id/ring/open
func OpenChallenge(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	sess, err := service.Dismissals().Open(ctx, alarmID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toRingResponse(ctx, sess))
}

// AttemptChallenge 挑战作答
// POST /v1/alarms/:alarm_id/ring/attempt
func AttemptChallenge(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	var req dto.AttemptRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	sess, err := service.Dismissals().Attempt(ctx, alarmID, req.Answer)
	if err == pkgerrors.ChallengeFailed && sess != nil {
		// 答错把刷新后的挑战带回去，客户端直接渲染
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
			"ring": toRingResponse(ctx, sess),
		})
		return
	}
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toRingResponse(ctx, sess))
}

// SnoozeAlarm 贪睡
// POST /v1/alarms/:alarm_id/ring/snooze
func SnoozeAlarm(ctx context.Context, c *app.RequestContext) {
	alarmID := c.Param("alarm_id")

	var req dto.SnoozeRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	alarm, err := service.Dismissals().Snooze(ctx, alarmID, req.Minutes)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"alarm_id":      alarm.ID,
		"is_active":     alarm.IsActive,
		"snoozed_until": alarm.SnoozedUntil,
	})
}

// toRingResponse 会话对外视图。挑战内容只在用户进入挑战后下发，
// 期望答案永远不出服务端。
func toRingResponse(ctx context.Context, sess *model.DismissalSession) dto.RingResponse {
	resp := dto.RingResponse{
		AlarmID:  sess.AlarmID,
		State:    string(sess.State),
		Mode:     string(sess.Mode),
		Failures: sess.Failures,
		FiredAt:  sess.FiredAt,
	}

	if sess.State == model.DismissalChallengeActive && sess.Challenge != nil {
		resp.Prompt = sess.Challenge.Prompt
		resp.Payload = sess.Challenge.Payload
	}

	if sess.NotificationHandle != "" {
		// 回执查不到就不带，平台侧可能还没消费到
		if at, err := cache.GetDeliveredAt(ctx, sess.NotificationHandle); err == nil {
			resp.DeliveredAt = at
		}
	}
	return resp
}
