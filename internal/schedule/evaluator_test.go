package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
)

// 2025-06-02 是周一
var (
	monday0730   = time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)
	saturday0730 = time.Date(2025, 6, 7, 7, 30, 0, 0, time.UTC)
)

type recordingSessions struct {
	opened []string
}

func (r *recordingSessions) OpenRinging(ctx context.Context, alarm model.Alarm, handle string, firedAt time.Time) error {
	r.opened = append(r.opened, alarm.ID)
	return nil
}

type countingStore struct {
	*store.MemoryStore
	saves int
}

func (c *countingStore) SaveAll(ctx context.Context, alarms []model.Alarm) error {
	c.saves++
	return c.MemoryStore.SaveAll(ctx, alarms)
}

func newTestEvaluator(t *testing.T, alarms ...model.Alarm) (*Evaluator, *countingStore, *notify.LogNotifier, *recordingSessions) {
	t.Helper()

	cs := &countingStore{MemoryStore: store.NewMemoryStore()}
	if err := cs.MemoryStore.SaveAll(context.Background(), alarms); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	n := notify.NewLogNotifier()
	sessions := &recordingSessions{}
	return NewEvaluator(cs, &store.MutexLocker{}, n, sessions), cs, n, sessions
}

func activeAlarm(id string, hour, minute int, days []int) model.Alarm {
	return model.Alarm{
		ID:       id,
		Hour:     hour,
		Minute:   minute,
		IsActive: true,
		Days:     days,
		Mode:     model.ModeQuiz,
	}
}

func TestEvaluateOneShotFiresOnceThenDeactivates(t *testing.T) {
	ctx := context.Background()
	ev, cs, _, sessions := newTestEvaluator(t, activeAlarm("a1", 7, 30, nil))

	fired, err := ev.Evaluate(ctx, monday0730)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !fired {
		t.Fatal("one-shot alarm should fire at its minute")
	}

	alarms, _ := cs.GetAll(ctx)
	if alarms[0].IsActive {
		t.Fatal("one-shot alarm must deactivate after firing")
	}
	if alarms[0].ArmedHandle != "" || alarms[0].NextAt != nil {
		t.Fatal("one-shot alarm must be disarmed after firing")
	}
	if alarms[0].LastTriggeredAt == nil || !alarms[0].LastTriggeredAt.Equal(monday0730) {
		t.Fatal("last_triggered_at not recorded")
	}
	if len(sessions.opened) != 1 || sessions.opened[0] != "a1" {
		t.Fatalf("expected one ringing session for a1, got %v", sessions.opened)
	}

	// 同一分钟再评估，不得重复触发
	fired, err = ev.Evaluate(ctx, monday0730.Add(20*time.Second))
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if fired {
		t.Fatal("alarm fired twice in the same minute")
	}
}

func TestEvaluateRecurringStaysActive(t *testing.T) {
	ctx := context.Background()
	ev, cs, _, _ := newTestEvaluator(t, activeAlarm("a1", 7, 30, []int{1, 2, 3, 4, 5}))

	fired, err := ev.Evaluate(ctx, monday0730)
	if err != nil || !fired {
		t.Fatalf("Evaluate on Monday: fired=%v err=%v", fired, err)
	}

	alarms, _ := cs.GetAll(ctx)
	if !alarms[0].IsActive {
		t.Fatal("recurring alarm must stay active after firing")
	}
	if alarms[0].NextAt == nil {
		t.Fatal("recurring alarm must keep a next occurrence")
	}
	// 下一次是周二 7:30
	want := time.Date(2025, 6, 3, 7, 30, 0, 0, time.UTC)
	if !alarms[0].NextAt.Equal(want) {
		t.Fatalf("next_at = %v, want %v", alarms[0].NextAt, want)
	}
}

func TestEvaluateRespectsWeekdaySet(t *testing.T) {
	ctx := context.Background()
	ev, _, _, _ := newTestEvaluator(t, activeAlarm("a1", 7, 30, []int{1, 2, 3, 4, 5}))

	fired, err := ev.Evaluate(ctx, saturday0730)
	if err != nil {
		t.Fatalf("Evaluate on Saturday: %v", err)
	}
	if fired {
		t.Fatal("weekday alarm must not fire on Saturday")
	}
}

func TestEvaluateSkipsInactiveAndOffMinute(t *testing.T) {
	ctx := context.Background()
	inactive := activeAlarm("a1", 7, 30, nil)
	inactive.IsActive = false
	ev, _, _, _ := newTestEvaluator(t, inactive, activeAlarm("a2", 8, 0, nil))

	fired, err := ev.Evaluate(ctx, monday0730)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if fired {
		t.Fatal("nothing should fire: a1 inactive, a2 not due")
	}
}

func TestEvaluateMultipleDueSingleWrite(t *testing.T) {
	ctx := context.Background()
	ev, cs, n, _ := newTestEvaluator(t,
		activeAlarm("first", 7, 30, nil),
		activeAlarm("second", 7, 30, []int{1}),
	)
	cs.saves = 0

	fired, err := ev.Evaluate(ctx, monday0730)
	if err != nil || !fired {
		t.Fatalf("Evaluate: fired=%v err=%v", fired, err)
	}

	delivered := n.Delivered()
	if len(delivered) != 2 || delivered[0] != "first" || delivered[1] != "second" {
		t.Fatalf("alarms must fire in store order, got %v", delivered)
	}
	if cs.saves != 1 {
		t.Fatalf("expected one combined save, got %d", cs.saves)
	}
}

func TestEvaluateDeliveryFailureIsolatedAndRetried(t *testing.T) {
	ctx := context.Background()
	ev, cs, n, _ := newTestEvaluator(t,
		activeAlarm("broken", 7, 30, nil),
		activeAlarm("healthy", 7, 30, nil),
	)

	// 第一轮全部投递失败
	n.DeliverErr = context.DeadlineExceeded
	fired, err := ev.Evaluate(ctx, monday0730)
	if err != nil {
		t.Fatalf("Evaluate with failing notifier: %v", err)
	}
	if fired {
		t.Fatal("nothing was delivered, fired must be false")
	}

	alarms, _ := cs.GetAll(ctx)
	for _, a := range alarms {
		if a.LastTriggeredAt != nil {
			t.Fatalf("alarm %s marked triggered despite delivery failure", a.ID)
		}
		if !a.IsActive {
			t.Fatalf("alarm %s deactivated despite delivery failure", a.ID)
		}
	}

	// 恢复后同一分钟内的下一轮重试成功
	n.DeliverErr = nil
	fired, err = ev.Evaluate(ctx, monday0730.Add(30*time.Second))
	if err != nil || !fired {
		t.Fatalf("retry Evaluate: fired=%v err=%v", fired, err)
	}
	if got := n.Delivered(); len(got) != 2 {
		t.Fatalf("expected both alarms delivered on retry, got %v", got)
	}
}

func TestEvaluateSnoozeFiresAtSnoozedMinute(t *testing.T) {
	ctx := context.Background()

	snoozeAt := monday0730.Add(5 * time.Minute)
	a := activeAlarm("a1", 7, 30, []int{1})
	triggered := monday0730
	a.LastTriggeredAt = &triggered
	a.SnoozedUntil = &snoozeAt

	ev, cs, _, _ := newTestEvaluator(t, a)

	// 贪睡期间原定时刻不再触发
	fired, err := ev.Evaluate(ctx, monday0730.Add(40*time.Second))
	if err != nil {
		t.Fatalf("Evaluate during snooze: %v", err)
	}
	if fired {
		t.Fatal("snoozed alarm must not fire before snooze expiry")
	}

	// 贪睡到期的那一分钟触发，并清掉贪睡标记
	fired, err = ev.Evaluate(ctx, snoozeAt)
	if err != nil || !fired {
		t.Fatalf("Evaluate at snooze expiry: fired=%v err=%v", fired, err)
	}

	alarms, _ := cs.GetAll(ctx)
	if alarms[0].SnoozedUntil != nil {
		t.Fatal("snoozed_until must be cleared after the snooze fire")
	}
	if !alarms[0].IsActive {
		t.Fatal("recurring alarm stays active after snooze fire")
	}
}

func TestEvaluateSnoozeMissedExpiryStillFires(t *testing.T) {
	ctx := context.Background()

	// 贪睡到 7:35，但 7:35 那一轮被跳过了（评估是尽力而为的），
	// 下一轮在 7:36 才跑到
	snoozeAt := monday0730.Add(5 * time.Minute)
	a := activeAlarm("a1", 7, 30, []int{1})
	triggered := monday0730
	a.LastTriggeredAt = &triggered
	a.SnoozedUntil = &snoozeAt

	ev, cs, _, _ := newTestEvaluator(t, a)

	fired, err := ev.Evaluate(ctx, monday0730.Add(6*time.Minute))
	if err != nil || !fired {
		t.Fatalf("Evaluate after missed expiry minute: fired=%v err=%v", fired, err)
	}

	alarms, _ := cs.GetAll(ctx)
	if alarms[0].SnoozedUntil != nil {
		t.Fatal("stale snoozed_until must be cleared by the catch-up fire")
	}
	if !alarms[0].IsActive {
		t.Fatal("recurring alarm stays active after the catch-up fire")
	}

	// 贪睡标记清掉后，下个周一的正常时刻照常触发
	nextMonday := monday0730.AddDate(0, 0, 7)
	fired, err = ev.Evaluate(ctx, nextMonday)
	if err != nil || !fired {
		t.Fatalf("Evaluate next Monday: fired=%v err=%v", fired, err)
	}
}

func TestEvaluateBusyWhenLockHeld(t *testing.T) {
	ctx := context.Background()
	locker := &store.MutexLocker{}
	if ok, _ := locker.TryLock(ctx); !ok {
		t.Fatal("setup: could not take lock")
	}

	ms := store.NewMemoryStore()
	ev := NewEvaluator(ms, locker, notify.NewLogNotifier(), nil)

	if _, err := ev.Evaluate(ctx, monday0730); err == nil {
		t.Fatal("expected busy error while lock held")
	}
}
