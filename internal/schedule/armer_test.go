package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

func TestArmComputesNextOccurrence(t *testing.T) {
	ctx := context.Background()
	armer := NewArmer(notify.NewLogNotifier())

	alarm := activeAlarm("a1", 7, 30, []int{1, 2, 3, 4, 5})
	now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC) // 周一 6:00

	if err := armer.Arm(ctx, &alarm, now); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	if alarm.ArmedHandle == "" {
		t.Fatal("armed alarm must carry a handle")
	}
	want := time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)
	if alarm.NextAt == nil || !alarm.NextAt.Equal(want) {
		t.Fatalf("next_at = %v, want %v", alarm.NextAt, want)
	}
}

func TestArmIsIdempotent(t *testing.T) {
	ctx := context.Background()
	armer := NewArmer(notify.NewLogNotifier())

	alarm := activeAlarm("a1", 7, 30, nil)
	now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)

	if err := armer.Arm(ctx, &alarm, now); err != nil {
		t.Fatalf("first Arm: %v", err)
	}
	first := alarm.ArmedHandle

	if err := armer.Arm(ctx, &alarm, now); err != nil {
		t.Fatalf("second Arm: %v", err)
	}

	// 重复布防换一个句柄，旧的登记被替换而不是叠加
	if alarm.ArmedHandle == "" || alarm.ArmedHandle == first {
		t.Fatal("re-arm must replace the previous registration")
	}
}

func TestArmCapabilityUnavailable(t *testing.T) {
	ctx := context.Background()
	n := notify.NewLogNotifier()
	n.ReadyErr = errors.CapabilityUnavailable
	armer := NewArmer(n)

	alarm := activeAlarm("a1", 7, 30, nil)
	now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)

	err := armer.Arm(ctx, &alarm, now)
	if err != errors.CapabilityUnavailable {
		t.Fatalf("expected CapabilityUnavailable, got %v", err)
	}
	if alarm.ArmedHandle != "" || alarm.NextAt != nil {
		t.Fatal("alarm must stay unarmed when capability is unavailable")
	}
}

func TestDisarmClearsDerivedState(t *testing.T) {
	ctx := context.Background()
	armer := NewArmer(notify.NewLogNotifier())

	alarm := activeAlarm("a1", 7, 30, nil)
	now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	if err := armer.Arm(ctx, &alarm, now); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	armer.Disarm(ctx, &alarm)
	if alarm.ArmedHandle != "" || alarm.NextAt != nil || alarm.SnoozedUntil != nil {
		t.Fatal("Disarm must clear handle, next_at and snoozed_until")
	}

	// 对未布防闹钟再次撤防无害
	armer.Disarm(ctx, &alarm)
}
