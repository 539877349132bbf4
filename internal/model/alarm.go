package model

import (
	"sort"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

// AlarmMode 解除闹钟所需的挑战类型
type AlarmMode string

const (
	ModeFindButton AlarmMode = "find_button" // 在一堆假按钮里找到真按钮
	ModeQuiz       AlarmMode = "quiz"        // 答对一道随机题
	ModeCaptcha    AlarmMode = "captcha"     // 抄对一段验证码
	ModeQRCode     AlarmMode = "qr_code"     // 扫描绑定的二维码
)

// ValidModes 闭集，mode -> 挑战的映射集中在 challenge 包
var ValidModes = map[AlarmMode]bool{
	ModeFindButton: true,
	ModeQuiz:       true,
	ModeCaptcha:    true,
	ModeQRCode:     true,
}

// Alarm 闹钟的持久化实体。整张列表序列化为一个 JSON 文档整存整取，
// 读取时未知字段直接忽略（向前兼容）。
type Alarm struct {
	ID     string `json:"id"`
	Hour   int    `json:"hour"`   // 0~23，创建时解析一次，展示文本是派生视图
	Minute int    `json:"minute"` // 0~59
	Label  string `json:"label"`

	IsActive bool  `json:"is_active"`
	Days     []int `json:"days,omitempty"` // 0=Sunday..6=Saturday；空集 = 一次性闹钟

	Mode         AlarmMode `json:"mode"`
	ChallengeRef string    `json:"challenge_ref,omitempty"` // qr_code 模式必填

	ArmedHandle     string     `json:"armed_handle,omitempty"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	SnoozedUntil    *time.Time `json:"snoozed_until,omitempty"`
	NextAt          *time.Time `json:"next_at,omitempty"` // 布防时预计算的下一次触发时刻

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOneShot 空的重复日集合表示一次性闹钟：触发一次后自动停用
func (a *Alarm) IsOneShot() bool {
	return len(a.Days) == 0
}

// Validate 校验闹钟定义的不变式
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 || a.Minute < 0 || a.Minute > 59 {
		return errors.TimeParseInvalid
	}

	if err := ValidateDays(a.Days); err != nil {
		return err
	}

	if !ValidModes[a.Mode] {
		return errors.ModeInvalid
	}

	if a.Mode == ModeQRCode && a.ChallengeRef == "" {
		return errors.ChallengeRefRequired
	}

	return nil
}

// ValidateDays 每个值必须在 [0,6]，不允许重复
func ValidateDays(days []int) error {
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			return errors.DaysInvalid
		}
		seen[d] = true
	}
	return nil
}

// NormalizeDays 去重并排序，保证存储口径稳定
func NormalizeDays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}

// Clone 深拷贝，evaluator 修改前先拷贝，避免共享切片
func (a Alarm) Clone() Alarm {
	out := a
	if a.Days != nil {
		out.Days = append([]int(nil), a.Days...)
	}
	if a.LastTriggeredAt != nil {
		t := *a.LastTriggeredAt
		out.LastTriggeredAt = &t
	}
	if a.SnoozedUntil != nil {
		t := *a.SnoozedUntil
		out.SnoozedUntil = &t
	}
	if a.NextAt != nil {
		t := *a.NextAt
		out.NextAt = &t
	}
	return out
}
