package clock

import "time"

// Clock 注入的时钟源，算法全部依赖它，测试时换成固定时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System 返回跟随系统墙钟的时钟源
func System() Clock {
	return systemClock{}
}

// Fixed 固定时钟，测试用
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// Set 拨动固定时钟
func (f *Fixed) Set(t time.Time) {
	f.T = t
}
