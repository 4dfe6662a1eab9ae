package service

import "time"

// Clock 注入的时钟，保证连续天数计算可测试
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
