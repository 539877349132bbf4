package challenge

import (
	"fmt"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// 口算题。难度够把人弄醒，又不至于在床上解不出来。
func newQuiz() *model.ChallengeInstance {
	var question string
	var answer int

	switch randInt(3) {
	case 0: // 两位数加法
		a, b := 10+randInt(90), 10+randInt(90)
		question = fmt.Sprintf("%d + %d = ?", a, b)
		answer = a + b
	case 1: // 减法，保证结果非负
		a, b := 10+randInt(90), 10+randInt(90)
		if b > a {
			a, b = b, a
		}
		question = fmt.Sprintf("%d - %d = ?", a, b)
		answer = a - b
	default: // 一位数乘两位数
		a, b := 2+randInt(8), 10+randInt(90)
		question = fmt.Sprintf("%d × %d = ?", a, b)
		answer = a * b
	}

	return &model.ChallengeInstance{
		Mode:     model.ModeQuiz,
		Prompt:   question,
		Expected: fmt.Sprintf("%d", answer),
	}
}
