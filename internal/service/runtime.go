package service

import (
	"sync"

	"github.com/deadpanpulley/alarm-nosnooze/internal/cache"
	"github.com/deadpanpulley/alarm-nosnooze/internal/clock"
	"github.com/deadpanpulley/alarm-nosnooze/internal/dismiss"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/schedule"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
)

// 默认装配：Redis 存储、跨进程评估锁、MQ 通知。
// server 和 scheduler 进程都从这里拿同一套单例。

var (
	machine     *dismiss.Machine
	machineOnce sync.Once

	evaluator     *schedule.Evaluator
	evaluatorOnce sync.Once
)

// Dismissals 返回解除状态机
func Dismissals() *dismiss.Machine {
	machineOnce.Do(func() {
		machine = dismiss.NewMachine(
			dismiss.NewRedisSessionStore(),
			store.NewRedisStore(),
			cache.EvaluateLocker{},
			notify.NewMQNotifier(),
			clock.System(),
		)
	})
	return machine
}

// TriggerEvaluator 返回触发评估器，触发后的响铃会话开在解除状态机上
func TriggerEvaluator() *schedule.Evaluator {
	evaluatorOnce.Do(func() {
		evaluator = schedule.NewEvaluator(
			store.NewRedisStore(),
			cache.EvaluateLocker{},
			notify.NewMQNotifier(),
			Dismissals(),
		)
	})
	return evaluator
}
