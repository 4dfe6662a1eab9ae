package service

import (
	"time"

	"dreampath_backend/internal/model"
)

// StreakService 连续活跃天数。按日历日比较，不按24小时间隔：
// 23:59 与次日 00:01 的两次活动算连续两天。
type StreakService struct{}

func NewStreakService() *StreakService {
	return &StreakService{}
}

func sameCalendarDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// RecordActivity 记录一次活动：
//   - 同一天重复活动不变；
//   - 恰好是昨天活跃过，连续天数+1；
//   - 其余情况（间隔≥2天、首次活动、LastActiveAt 在未来）重置为1。
//
// 返回最新连续天数以及本次调用是否改变了状态。
func (s *StreakService) RecordActivity(p *model.UserProgress, today time.Time) (int, bool) {
	if !p.LastActiveAt.IsZero() && sameCalendarDay(p.LastActiveAt, today) {
		return p.StreakCount, false
	}

	yesterday := today.AddDate(0, 0, -1)
	if !p.LastActiveAt.IsZero() && sameCalendarDay(p.LastActiveAt, yesterday) {
		p.StreakCount++
	} else {
		p.StreakCount = 1
	}
	p.LastActiveAt = today
	return p.StreakCount, true
}

// MessageFor 分档鼓励文案。档位边界 (0 / 1 / 2-4 / 5-9 / 10+) 是契约：
// streaker 徽章在≥5档解锁，文案措辞可改但边界不能动。
func (s *StreakService) MessageFor(streakCount int) string {
	switch {
	case streakCount <= 0:
		return "Start your journey today!"
	case streakCount == 1:
		return "Great start! Keep it going!"
	case streakCount <= 4:
		return "You're on fire! 🔥"
	case streakCount <= 9:
		return "Amazing streak! You're unstoppable!"
	default:
		return "Incredible! You're a DreamPath champion! 🏆"
	}
}
