package service

import (
	"dreampath_backend/internal/model"
	"dreampath_backend/pkg/logger"

	"go.uber.org/zap"
)

// badgeCatalog 固定徽章目录，切片顺序即 EvaluateAll 的评估顺序
var badgeCatalog = []model.BadgeDefinition{
	{
		ID:       "explorer",
		Name:     "Explorer",
		Details:  "Explored 5 different careers",
		Icon:     "binoculars.fill",
		XPReward: 100,
		Condition: func(p *model.UserProgress) bool {
			return len(p.CompletedCareers) >= 5
		},
	},
	{
		ID:       "scholar",
		Name:     "Scholar",
		Details:  "Completed 3 learning activities",
		Icon:     "book.fill",
		XPReward: 150,
		Condition: func(p *model.UserProgress) bool {
			return p.LearnStepsCompleted >= 3
		},
	},
	{
		ID:       "creator",
		Name:     "Creator",
		Details:  "Tried a creative career path",
		Icon:     "paintbrush.fill",
		XPReward: 200,
		Condition: func(p *model.UserProgress) bool {
			return p.TriedCreativeCareer
		},
	},
	{
		ID:       "streaker",
		Name:     "Streaker",
		Details:  "Maintained a 5-day streak",
		Icon:     "flame.fill",
		XPReward: 300,
		Condition: func(p *model.UserProgress) bool {
			return p.StreakCount >= 5
		},
	},
	{
		ID:       "analyst",
		Name:     "Analyst",
		Details:  "Completed 3 career quizzes",
		Icon:     "chart.bar.fill",
		XPReward: 150,
		Condition: func(p *model.UserProgress) bool {
			return p.QuizzesCompleted >= 3
		},
	},
	{
		ID:       "helper",
		Name:     "Helper",
		Details:  "Explored helping careers",
		Icon:     "heart.fill",
		XPReward: 100,
		Condition: func(p *model.UserProgress) bool {
			return p.ExploredHelpingCareer
		},
	},
}

type BadgeService struct {
	XP    *ExperienceService
	Clock Clock
}

func NewBadgeService(xp *ExperienceService, clock Clock) *BadgeService {
	return &BadgeService{XP: xp, Clock: clock}
}

// Definitions 返回目录副本（固定顺序）
func (s *BadgeService) Definitions() []model.BadgeDefinition {
	defs := make([]model.BadgeDefinition, len(badgeCatalog))
	copy(defs, badgeCatalog)
	return defs
}

// DefinitionFor 按ID查找徽章定义。
// 未知ID回退为通用 "Achievement"（50XP），兼容历史数据；
// 调用方不应依赖它创造新徽章。
func (s *BadgeService) DefinitionFor(badgeID string) model.BadgeDefinition {
	for _, def := range badgeCatalog {
		if def.ID == badgeID {
			return def
		}
	}
	logger.Log.Warn("unknown badge id, falling back to generic achievement", zap.String("badgeId", badgeID))
	return model.BadgeDefinition{
		ID:       badgeID,
		Name:     "Achievement",
		Details:  "Earned a special achievement",
		Icon:     "star.fill",
		XPReward: 50,
	}
}

// UnlockResult 解锁结果；重复解锁时 Newly 为 false 且不发放经验
type UnlockResult struct {
	BadgeID string       `json:"badgeId"`
	Name    string       `json:"name"`
	Newly   bool         `json:"newly"`
	Award   *AwardResult `json:"award,omitempty"`
}

// Unlock 解锁徽章并发放其奖励经验。幂等：已解锁的徽章不重复发放。
func (s *BadgeService) Unlock(p *model.UserProgress, badgeID string) (*UnlockResult, error) {
	def := s.DefinitionFor(badgeID)

	state := p.Badge(badgeID)
	if state != nil && state.Unlocked {
		return &UnlockResult{BadgeID: badgeID, Name: def.Name}, nil
	}

	award, err := s.XP.AwardAmount(p, ReasonBadgeUnlock, def.XPReward)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if state == nil {
		p.Badges = append(p.Badges, model.BadgeState{
			ProgressID: p.ID,
			BadgeID:    badgeID,
			Unlocked:   true,
			UnlockedAt: &now,
		})
	} else {
		state.Unlocked = true
		state.UnlockedAt = &now
	}

	return &UnlockResult{BadgeID: badgeID, Name: def.Name, Newly: true, Award: award}, nil
}

// EvaluateAll 按目录顺序评估全部解锁条件，返回本次新解锁的徽章。
// 可以在任意进度变化后重复调用，只有首次满足条件时产生副作用。
func (s *BadgeService) EvaluateAll(p *model.UserProgress) ([]UnlockResult, error) {
	var newly []UnlockResult
	for _, def := range badgeCatalog {
		if def.Condition == nil || !def.Condition(p) {
			continue
		}
		if p.HasBadge(def.ID) {
			continue
		}
		result, err := s.Unlock(p, def.ID)
		if err != nil {
			return newly, err
		}
		if result.Newly {
			newly = append(newly, *result)
		}
	}
	return newly, nil
}
