package utils

import (
	"testing"
	"time"
)

func TestResolveClockTime(t *testing.T) {
	cases := []struct {
		text    string
		hour    int
		minute  int
		wantErr bool
	}{
		{"7:30 AM", 7, 30, false},
		{"7:30 PM", 19, 30, false},
		{"12:00 AM", 0, 0, false},
		{"12:00 PM", 12, 0, false},
		{"12:59 PM", 12, 59, false},
		{"1:05 am", 1, 5, false},
		{"  11:45 PM  ", 23, 45, false},
		{"07:30 AM", 7, 30, false},
		{"13:00 PM", 0, 0, true},
		{"0:30 AM", 0, 0, true},
		{"7:5 AM", 0, 0, true},
		{"7:60 AM", 0, 0, true},
		{"7:30", 0, 0, true},
		{"7:30 XM", 0, 0, true},
		{"", 0, 0, true},
		{"seven thirty AM", 0, 0, true},
	}

	for _, tc := range cases {
		h, m, err := ResolveClockTime(tc.text)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ResolveClockTime(%q): expected error, got %d:%d", tc.text, h, m)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveClockTime(%q): unexpected error %v", tc.text, err)
			continue
		}
		if h != tc.hour || m != tc.minute {
			t.Errorf("ResolveClockTime(%q) = %d:%d, want %d:%d", tc.text, h, m, tc.hour, tc.minute)
		}
	}
}

func TestFormatClockTimeRoundTrip(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   string
	}{
		{0, 0, "12:00 AM"},
		{7, 30, "7:30 AM"},
		{12, 0, "12:00 PM"},
		{19, 5, "7:05 PM"},
		{23, 59, "11:59 PM"},
	}

	for _, tc := range cases {
		got := FormatClockTime(tc.hour, tc.minute)
		if got != tc.want {
			t.Errorf("FormatClockTime(%d, %d) = %q, want %q", tc.hour, tc.minute, got, tc.want)
		}

		h, m, err := ResolveClockTime(got)
		if err != nil || h != tc.hour || m != tc.minute {
			t.Errorf("round trip %q = %d:%d (%v), want %d:%d", got, h, m, err, tc.hour, tc.minute)
		}
	}
}

// 2025-06-02 是周一
func mustDate(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrenceOneShot(t *testing.T) {
	now := mustDate(t, 2, 7, 0) // Monday 07:00

	got := NextOccurrence(now, 7, 30, nil)
	want := mustDate(t, 2, 7, 30)
	if !got.Equal(want) {
		t.Errorf("future time today: got %v, want %v", got, want)
	}

	// 时间已过（含正好等于 now 的边界）则顺延到明天
	got = NextOccurrence(now, 7, 0, nil)
	want = mustDate(t, 3, 7, 0)
	if !got.Equal(want) {
		t.Errorf("time equal to now: got %v, want %v", got, want)
	}

	got = NextOccurrence(now, 6, 0, nil)
	want = mustDate(t, 3, 6, 0)
	if !got.Equal(want) {
		t.Errorf("time already passed: got %v, want %v", got, want)
	}
}

func TestNextOccurrenceRecurring(t *testing.T) {
	monday := mustDate(t, 2, 7, 0)

	// 今天在集合里且时间未过：当天命中
	got := NextOccurrence(monday, 7, 30, []int{1})
	if want := mustDate(t, 2, 7, 30); !got.Equal(want) {
		t.Errorf("today matches: got %v, want %v", got, want)
	}

	// 只有今天在集合里且时间已过：回绕到 7 天后
	got = NextOccurrence(monday, 6, 0, []int{1})
	if want := mustDate(t, 9, 6, 0); !got.Equal(want) {
		t.Errorf("wrap a full week: got %v, want %v", got, want)
	}

	// 今天时间已过但集合里还有更近的日子
	got = NextOccurrence(monday, 6, 0, []int{1, 3}) // Wednesday
	if want := mustDate(t, 4, 6, 0); !got.Equal(want) {
		t.Errorf("nearest later day wins: got %v, want %v", got, want)
	}

	// 周六不在工作日集合，找到下周一
	saturday := mustDate(t, 7, 7, 30)
	got = NextOccurrence(saturday, 7, 30, []int{1, 2, 3, 4, 5})
	if want := mustDate(t, 9, 7, 30); !got.Equal(want) {
		t.Errorf("weekday set from Saturday: got %v, want %v", got, want)
	}

	// 周日（weekday 0）也要能命中
	sunday := mustDate(t, 1, 9, 0)
	got = NextOccurrence(sunday, 10, 0, []int{0})
	if want := mustDate(t, 1, 10, 0); !got.Equal(want) {
		t.Errorf("Sunday index 0: got %v, want %v", got, want)
	}
}

func TestMinuteStart(t *testing.T) {
	in := time.Date(2025, 6, 2, 7, 30, 45, 123456, time.UTC)
	want := time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)
	if got := MinuteStart(in); !got.Equal(want) {
		t.Errorf("MinuteStart = %v, want %v", got, want)
	}
}
