package errors

import "fmt"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 闹钟定义相关错误。
var (
	TimeParseInvalid     = Definition{Code: "TIME_PARSE_INVALID", Message: "Time text must match H:MM AM|PM"}
	DaysInvalid          = Definition{Code: "DAYS_INVALID", Message: "Repeat days must be unique values in 0..6"}
	ChallengeRefRequired = Definition{Code: "CHALLENGE_REF_REQUIRED", Message: "QR code alarms require a challenge reference"}
	ModeInvalid          = Definition{Code: "MODE_INVALID", Message: "Unknown alarm mode"}
	AlarmNotFound        = Definition{Code: "ALARM_NOT_FOUND", Message: "Alarm not found"}
)

// 调度与触发相关错误。
var (
	CapabilityUnavailable = Definition{Code: "CAPABILITY_UNAVAILABLE", Message: "Notification capability unavailable"}
	StorageFailure        = Definition{Code: "STORAGE_FAILURE", Message: "Alarm storage failure"}
	DeliveryFailure       = Definition{Code: "DELIVERY_FAILURE", Message: "Alarm notification delivery failure"}
	EvaluateBusy          = Definition{Code: "EVALUATE_BUSY", Message: "Another evaluation pass is in flight"}
)

// 响铃会话与挑战相关错误。
var (
	SessionNotFound     = Definition{Code: "SESSION_NOT_FOUND", Message: "No ringing session for alarm"}
	SessionStateInvalid = Definition{Code: "SESSION_STATE_INVALID", Message: "Session is not in a state allowing this action"}
	ChallengeFailed     = Definition{Code: "CHALLENGE_FAILED", Message: "Challenge answer incorrect"}
	SnoozeInvalid       = Definition{Code: "SNOOZE_INVALID", Message: "Snooze duration out of range"}
)

// 通用错误。
var (
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	TimeParseInvalid.Code:      TimeParseInvalid,
	DaysInvalid.Code:           DaysInvalid,
	ChallengeRefRequired.Code:  ChallengeRefRequired,
	ModeInvalid.Code:           ModeInvalid,
	AlarmNotFound.Code:         AlarmNotFound,
	CapabilityUnavailable.Code: CapabilityUnavailable,
	StorageFailure.Code:        StorageFailure,
	DeliveryFailure.Code:       DeliveryFailure,
	EvaluateBusy.Code:          EvaluateBusy,
	SessionNotFound.Code:       SessionNotFound,
	SessionStateInvalid.Code:   SessionStateInvalid,
	ChallengeFailed.Code:       ChallengeFailed,
	SnoozeInvalid.Code:         SnoozeInvalid,
	TooManyRequests.Code:       TooManyRequests,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError 消费者侧幂等跳过：消息已处理，确认但不重试。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return fmt.Sprintf("skip message: %s", e.Reason)
}

func IsSkipMessageError(err error) bool {
	_, ok := err.(*SkipMessageError)
	return ok
}
