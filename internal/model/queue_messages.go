package model

// AlarmFiredMessage 闹钟触发消息，worker 消费后完成平台侧的送达记账
type AlarmFiredMessage struct {
	MessageID          string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	AlarmID            string `json:"alarm_id"`
	Label              string `json:"label"`
	Mode               string `json:"mode"`
	NotificationHandle string `json:"notification_handle"`
	FiredAt            string `json:"fired_at"` // RFC3339
	OneShot            bool   `json:"one_shot"`
}

// AlarmDismissedMessage 闹钟解除消息，通知平台撤掉对应的可见通知
type AlarmDismissedMessage struct {
	MessageID          string `json:"message_id"`
	NotificationHandle string `json:"notification_handle"`
	DismissedAt        string `json:"dismissed_at"`
}
