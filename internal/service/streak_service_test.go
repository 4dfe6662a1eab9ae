package service

import (
	"testing"
	"time"

	"dreampath_backend/internal/model"
)

func day(yearMonthDay ...int) time.Time {
	return time.Date(yearMonthDay[0], time.Month(yearMonthDay[1]), yearMonthDay[2], 12, 0, 0, 0, time.UTC)
}

func TestRecordActivityFirstEver(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{}

	count, changed := svc.RecordActivity(p, day(2025, 3, 10))
	if count != 1 || !changed {
		t.Fatalf("first activity = (%d, %v), want (1, true)", count, changed)
	}
	if !sameCalendarDay(p.LastActiveAt, day(2025, 3, 10)) {
		t.Errorf("LastActiveAt not updated: %v", p.LastActiveAt)
	}
}

func TestRecordActivitySameDayNoChange(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{StreakCount: 3, LastActiveAt: day(2025, 3, 10)}

	count, changed := svc.RecordActivity(p, time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC))
	if count != 3 || changed {
		t.Fatalf("same-day activity = (%d, %v), want (3, false)", count, changed)
	}
}

func TestRecordActivityConsecutiveDays(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{}

	for i := 0; i < 4; i++ {
		svc.RecordActivity(p, day(2025, 3, 10+i))
	}
	if p.StreakCount != 4 {
		t.Errorf("StreakCount = %d after 4 consecutive days, want 4", p.StreakCount)
	}
}

func TestRecordActivityCalendarDayNotElapsedHours(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{
		StreakCount:  1,
		LastActiveAt: time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
	}

	// two minutes later but a new calendar day
	count, changed := svc.RecordActivity(p, time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC))
	if count != 2 || !changed {
		t.Fatalf("midnight rollover = (%d, %v), want (2, true)", count, changed)
	}
}

func TestRecordActivityGapResets(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{StreakCount: 7, LastActiveAt: day(2025, 3, 10)}

	count, changed := svc.RecordActivity(p, day(2025, 3, 13))
	if count != 1 || !changed {
		t.Fatalf("3-day gap = (%d, %v), want (1, true)", count, changed)
	}
}

func TestRecordActivityFutureLastActiveResets(t *testing.T) {
	svc := NewStreakService()
	p := &model.UserProgress{StreakCount: 5, LastActiveAt: day(2025, 3, 20)}

	count, changed := svc.RecordActivity(p, day(2025, 3, 10))
	if count != 1 || !changed {
		t.Fatalf("future LastActiveAt = (%d, %v), want (1, true)", count, changed)
	}
}

func TestMessageForTierBoundaries(t *testing.T) {
	svc := NewStreakService()

	// 档位边界 0 / 1 / 2-4 / 5-9 / 10+ 是契约
	tiers := map[int]string{
		0:  svc.MessageFor(0),
		1:  svc.MessageFor(1),
		2:  svc.MessageFor(2),
		4:  svc.MessageFor(4),
		5:  svc.MessageFor(5),
		9:  svc.MessageFor(9),
		10: svc.MessageFor(10),
		25: svc.MessageFor(25),
	}

	if tiers[2] != tiers[4] {
		t.Error("counts 2 and 4 should share a tier")
	}
	if tiers[5] != tiers[9] {
		t.Error("counts 5 and 9 should share a tier")
	}
	if tiers[10] != tiers[25] {
		t.Error("counts 10 and 25 should share a tier")
	}
	if tiers[4] == tiers[5] {
		t.Error("counts 4 and 5 must be different tiers (streaker boundary)")
	}
	if tiers[0] == tiers[1] || tiers[1] == tiers[2] || tiers[9] == tiers[10] {
		t.Error("tier boundaries at 1, 2 and 10 must hold")
	}
}
