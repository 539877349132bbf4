package dto

import "time"

// CreateAlarmRequest 创建闹钟。time 沿用客户端的展示格式（"7:30 AM"），
// 服务端解析一次后只存 hour/minute。
type CreateAlarmRequest struct {
	Time         string `json:"time" vd:"len($)>0"`
	Label        string `json:"label"`
	Days         []int  `json:"days"`
	Mode         string `json:"mode" vd:"len($)>0"`
	ChallengeRef string `json:"challenge_ref"`
	IsActive     *bool  `json:"is_active"` // 缺省为 true
}

// UpdateAlarmRequest 部分更新，nil 表示不改
type UpdateAlarmRequest struct {
	Time         *string `json:"time"`
	Label        *string `json:"label"`
	Days         *[]int  `json:"days"`
	Mode         *string `json:"mode"`
	ChallengeRef *string `json:"challenge_ref"`
}

// ToggleAlarmRequest 开关闹钟（布防/撤防）
type ToggleAlarmRequest struct {
	Active bool `json:"active"`
}

// AttemptRequest 挑战作答
type AttemptRequest struct {
	Answer string `json:"answer" vd:"len($)>0"`
}

// SnoozeRequest 贪睡，minutes 为 0 时用服务端默认值
type SnoozeRequest struct {
	Minutes int `json:"minutes"`
}

// AlarmResponse 对外视图，time 为派生的展示文本
type AlarmResponse struct {
	ID              string     `json:"id"`
	Time            string     `json:"time"`
	Hour            int        `json:"hour"`
	Minute          int        `json:"minute"`
	Label           string     `json:"label"`
	IsActive        bool       `json:"is_active"`
	Days            []int      `json:"days"`
	Mode            string     `json:"mode"`
	ChallengeRef    string     `json:"challenge_ref,omitempty"`
	Armed           bool       `json:"armed"`
	NextAt          *time.Time `json:"next_at,omitempty"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	SnoozedUntil    *time.Time `json:"snoozed_until,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RingResponse 响铃会话视图，不回传挑战答案
type RingResponse struct {
	AlarmID     string                 `json:"alarm_id"`
	State       string                 `json:"state"`
	Mode        string                 `json:"mode"`
	Prompt      string                 `json:"prompt,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Failures    int                    `json:"failures"`
	FiredAt     time.Time              `json:"fired_at"`
	DeliveredAt *time.Time             `json:"delivered_at,omitempty"`
}

// EvaluateResponse 手动触发一次扫描的结果
type EvaluateResponse struct {
	Fired     bool      `json:"fired"`
	CheckedAt time.Time `json:"checked_at"`
}
