package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

// ResolveClockTime 解析 12 小时制时间文本（格式：H:MM AM|PM，H 为 1~12）
// 返回 24 小时制的时和分。这是遗留的展示格式，内部一律存 hour/minute。
func ResolveClockTime(text string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 2 {
		return 0, 0, errors.TimeParseInvalid
	}

	period := strings.ToUpper(fields[1])
	if period != "AM" && period != "PM" {
		return 0, 0, errors.TimeParseInvalid
	}

	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 || len(hm[1]) != 2 {
		return 0, 0, errors.TimeParseInvalid
	}

	h, herr := strconv.Atoi(hm[0])
	m, merr := strconv.Atoi(hm[1])
	if herr != nil || merr != nil {
		return 0, 0, errors.TimeParseInvalid
	}

	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, 0, errors.TimeParseInvalid
	}

	// 12 AM -> 0 点，12 PM -> 12 点
	if h == 12 {
		h = 0
	}
	if period == "PM" {
		h += 12
	}

	return h, m, nil
}

// FormatClockTime 将 24 小时制的时和分渲染成展示文本（"7:30 AM"）
func FormatClockTime(hour, minute int) string {
	period := "AM"
	h := hour

	if hour >= 12 {
		period = "PM"
		h = hour - 12
	}
	if h == 0 {
		h = 12
	}

	return fmt.Sprintf("%d:%02d %s", h, minute, period)
}

// NextOccurrence 计算下一次触发的绝对时刻。纯函数，给定 now 结果确定。
// days 为空：今天的 hour:minute，已过则顺延一天。
// days 非空：从 now 的星期（含当天）起向后找 0~6 天内最近的命中日，
// 要求候选时刻严格晚于 now；当天命中且时间未过时偏移为 0。
func NextOccurrence(now time.Time, hour, minute int, days []int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	if len(days) == 0 {
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}

	inSet := make(map[int]bool, len(days))
	for _, d := range days {
		inSet[d] = true
	}

	weekday := int(now.Weekday()) // 0=Sunday..6=Saturday，与存储口径一致
	for offset := 0; offset <= 7; offset++ {
		if !inSet[(weekday+offset)%7] {
			continue
		}
		c := candidate.AddDate(0, 0, offset)
		if c.After(now) {
			return c
		}
		// offset 0 且今天时间已过：继续向后找，最远回绕到 7 天后的同一天
	}

	// days 非空时上面的循环必然命中，这里只是兜底
	return candidate.AddDate(0, 0, 7)
}

// MinuteStart 截断到分钟边界，用于同一分钟内的去重比较
func MinuteStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
