package challenge

import (
	"crypto/rand"
	"math/big"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

// Generate 为闹钟生成一个新的挑战实例。
// quiz / captcha / find_button 每次调用都产出新内容，
// qr_code 的期望值固定为闹钟绑定的引用。
func Generate(alarm model.Alarm) (*model.ChallengeInstance, error) {
	switch alarm.Mode {
	case model.ModeQuiz:
		return newQuiz(), nil
	case model.ModeCaptcha:
		return newCaptcha(), nil
	case model.ModeFindButton:
		return newButtonGrid(), nil
	case model.ModeQRCode:
		return newQRScan(alarm.ChallengeRef), nil
	default:
		return nil, errors.ModeInvalid
	}
}

// Verify 比对用户作答与挑战实例的期望值
func Verify(instance *model.ChallengeInstance, answer string) bool {
	if instance == nil {
		return false
	}
	return answer == instance.Expected
}

// RetryPolicy 回答错误后的处理策略
type RetryPolicy int

const (
	// RetryNewInstance 失败即换一个新实例（quiz、find_button）
	RetryNewInstance RetryPolicy = iota
	// RetrySameInstance 继续用当前实例重试（qr_code，连续失败也不换）
	RetrySameInstance
	// RetrySameUntilThreshold 连续失败达到阈值后才换（captcha）
	RetrySameUntilThreshold
)

// PolicyFor 返回各模式的失败重试策略
func PolicyFor(mode model.AlarmMode) RetryPolicy {
	switch mode {
	case model.ModeCaptcha:
		return RetrySameUntilThreshold
	case model.ModeQRCode:
		return RetrySameInstance
	default:
		return RetryNewInstance
	}
}

// randInt 返回 [0, n) 内的随机数，挑战内容不可预测
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand 不可用说明运行环境已坏
		panic("challenge: random source unavailable: " + err.Error())
	}
	return int(v.Int64())
}
