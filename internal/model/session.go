package model

import "time"

// DismissalState 响铃会话状态机的状态
type DismissalState string

const (
	DismissalRinging         DismissalState = "ringing"          // 已送达，等待用户打开挑战
	DismissalChallengeActive DismissalState = "challenge_active" // 用户已进入挑战界面
	DismissalDismissed       DismissalState = "dismissed"        // 终态，挑战成功
)

// ChallengeInstance 一次具体的挑战实例。
// Prompt 与 Payload 下发给客户端，Expected 只留在服务端比对。
type ChallengeInstance struct {
	Mode     AlarmMode              `json:"mode"`
	Prompt   string                 `json:"prompt"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Expected string                 `json:"expected"`
}

// DismissalSession 一次触发对应的响铃会话
type DismissalSession struct {
	AlarmID            string             `json:"alarm_id"`
	State              DismissalState     `json:"state"`
	Mode               AlarmMode          `json:"mode"`
	NotificationHandle string             `json:"notification_handle,omitempty"`
	Challenge          *ChallengeInstance `json:"challenge,omitempty"`
	Failures           int                `json:"failures"` // 当前挑战实例上的连续失败次数
	FiredAt            time.Time          `json:"fired_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
