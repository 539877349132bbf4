package challenge

import (
	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// 去掉了易混淆字符（0/O、1/I/l）的字母表
const captchaAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// 验证码挑战：客户端把 code 渲染成扭曲图片，用户照抄。
// 答案大小写敏感，抄错不换图，连续错满阈值才换（状态机控制）。
func newCaptcha() *model.ChallengeInstance {
	length := config.Cfg.CaptchaLength
	if length <= 0 {
		length = 5
	}

	code := make([]byte, length)
	for i := range code {
		code[i] = captchaAlphabet[randInt(len(captchaAlphabet))]
	}

	return &model.ChallengeInstance{
		Mode:   model.ModeCaptcha,
		Prompt: "Type the characters shown",
		Payload: map[string]interface{}{
			"code": string(code),
		},
		Expected: string(code),
	}
}
