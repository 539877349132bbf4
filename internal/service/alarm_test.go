package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/internal/clock"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model/dto"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/schedule"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
	pkgerrors "github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

func newTestService(t *testing.T) (*AlarmService, *notify.LogNotifier) {
	t.Helper()

	n := notify.NewLogNotifier()
	clk := &clock.Fixed{T: time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)}
	svc := NewAlarmService(store.NewMemoryStore(), &store.MutexLocker{}, schedule.NewArmer(n), clk)

	seq := 0
	svc.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("alarm-%d", seq), nil
	}
	return svc, n
}

func TestCreateParsesTimeOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.Create(ctx, dto.CreateAlarmRequest{
		Time: "7:30 AM",
		Mode: "quiz",
		Days: []int{5, 1, 3},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Hour != 7 || resp.Minute != 30 {
		t.Fatalf("stored %d:%d, want 7:30", resp.Hour, resp.Minute)
	}
	if resp.Time != "7:30 AM" {
		t.Fatalf("display time = %q", resp.Time)
	}
	// 重复的 days 在校验阶段就被拒掉，这里只剩排序
	if len(resp.Days) != 3 || resp.Days[0] != 1 || resp.Days[1] != 3 || resp.Days[2] != 5 {
		t.Fatalf("days not normalized: %v", resp.Days)
	}
	if !resp.IsActive || !resp.Armed {
		t.Fatal("new alarm defaults to active and armed")
	}
	if resp.NextAt == nil {
		t.Fatal("armed alarm must expose next_at")
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct {
		name string
		req  dto.CreateAlarmRequest
		want error
	}{
		{"bad time", dto.CreateAlarmRequest{Time: "25:00 AM", Mode: "quiz"}, pkgerrors.TimeParseInvalid},
		{"bad days", dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz", Days: []int{7}}, pkgerrors.DaysInvalid},
		{"dup days", dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz", Days: []int{1, 1}}, pkgerrors.DaysInvalid},
		{"bad mode", dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "shouting"}, pkgerrors.ModeInvalid},
		{"qr without ref", dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "qr_code"}, pkgerrors.ChallengeRefRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	// 全部被拒，列表保持为空
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected creates must not persist, got %d alarms", len(list))
	}
}

func TestCreateCapabilityUnavailableKeepsIntent(t *testing.T) {
	ctx := context.Background()
	svc, n := newTestService(t)
	n.ReadyErr = pkgerrors.CapabilityUnavailable

	resp, err := svc.Create(ctx, dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz"})
	if err != pkgerrors.CapabilityUnavailable {
		t.Fatalf("err = %v, want CapabilityUnavailable", err)
	}
	if resp == nil {
		t.Fatal("alarm must still be created")
	}
	if !resp.IsActive {
		t.Fatal("activation intent must be kept")
	}
	if resp.Armed || resp.NextAt != nil {
		t.Fatal("alarm must stay unarmed while capability is down")
	}

	// 落了盘
	got, err := svc.Get(ctx, resp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsActive || got.Armed {
		t.Fatalf("persisted state wrong: %+v", got)
	}
}

func TestUpdateReparsesAndRearms(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newTime := "9:05 PM"
	newLabel := "gym"
	updated, err := svc.Update(ctx, created.ID, dto.UpdateAlarmRequest{Time: &newTime, Label: &newLabel})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Hour != 21 || updated.Minute != 5 {
		t.Fatalf("updated to %d:%d, want 21:05", updated.Hour, updated.Minute)
	}
	if updated.Label != "gym" {
		t.Fatalf("label = %q", updated.Label)
	}
	if !updated.Armed || updated.NextAt == nil {
		t.Fatal("active alarm must be re-armed after update")
	}
	want := time.Date(2025, 6, 2, 21, 5, 0, 0, time.UTC)
	if !updated.NextAt.Equal(want) {
		t.Fatalf("next_at = %v, want %v", updated.NextAt, want)
	}

	if _, err := svc.Update(ctx, "ghost", dto.UpdateAlarmRequest{Label: &newLabel}); err != pkgerrors.AlarmNotFound {
		t.Fatalf("update unknown alarm: %v", err)
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	off, err := svc.Toggle(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if off.IsActive || off.Armed || off.NextAt != nil {
		t.Fatalf("toggled-off alarm still scheduled: %+v", off)
	}
	// 定义保留
	if off.Hour != 7 || off.Minute != 30 {
		t.Fatal("toggle must not touch the alarm definition")
	}

	on, err := svc.Toggle(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if !on.IsActive || !on.Armed {
		t.Fatalf("toggled-on alarm not armed: %+v", on)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, dto.CreateAlarmRequest{Time: "7:30 AM", Mode: "quiz"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != pkgerrors.AlarmNotFound {
		t.Fatalf("Get after delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != pkgerrors.AlarmNotFound {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListKeepsStoreOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, tm := range []string{"7:30 AM", "8:00 AM", "6:45 AM"} {
		if _, err := svc.Create(ctx, dto.CreateAlarmRequest{Time: tm, Mode: "quiz"}); err != nil {
			t.Fatalf("Create %s: %v", tm, err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	// 创建顺序就是存储顺序，不按时间排序
	if list[0].Time != "7:30 AM" || list[1].Time != "8:00 AM" || list[2].Time != "6:45 AM" {
		t.Fatalf("order changed: %v, %v, %v", list[0].Time, list[1].Time, list[2].Time)
	}
}
