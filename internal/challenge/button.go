package challenge

import (
	"fmt"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// 找按钮挑战：一个真停止按钮混在一堆假按钮里，
// 客户端按 buttons 顺序渲染，用户点中真按钮才算过。
// 点错即重新洗一版布局（状态机控制）。
func newButtonGrid() *model.ChallengeInstance {
	fakes := config.Cfg.FakeButtonCount
	if fakes <= 0 {
		fakes = 8
	}

	total := fakes + 1
	realIndex := randInt(total)

	buttons := make([]map[string]interface{}, total)
	for i := range buttons {
		buttons[i] = map[string]interface{}{
			"id":    fmt.Sprintf("btn-%d", i),
			"label": "STOP",
			// 假按钮抖动位置，真按钮不动——这是唯一的视觉线索
			"jitter": i != realIndex,
		}
	}

	return &model.ChallengeInstance{
		Mode:   model.ModeFindButton,
		Prompt: "Find the real stop button",
		Payload: map[string]interface{}{
			"buttons": buttons,
		},
		Expected: fmt.Sprintf("btn-%d", realIndex),
	}
}
