package service

import (
	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"
)

// XPReason 经验来源
type XPReason string

const (
	ReasonQuizCompletion     XPReason = "quiz_completion"
	ReasonQuestStep          XPReason = "quest_step"
	ReasonDailyStreak        XPReason = "daily_streak"
	ReasonFirstExplore       XPReason = "first_explore"
	ReasonCareerPathComplete XPReason = "career_path_complete"
	ReasonBadgeUnlock        XPReason = "badge_unlock"
	ReasonLevelUpBonus       XPReason = "level_up_bonus"
)

// LevelUpBonusXP 升级时一次性奖励
const LevelUpBonusXP = 50

// DefaultAmount 各来源的默认经验值；badge_unlock 为0，金额由徽章目录决定
func (r XPReason) DefaultAmount() int {
	switch r {
	case ReasonQuizCompletion:
		return 100
	case ReasonQuestStep:
		return 50
	case ReasonDailyStreak:
		return 25
	case ReasonFirstExplore:
		return 10
	case ReasonCareerPathComplete:
		return 200
	case ReasonLevelUpBonus:
		return LevelUpBonusXP
	default:
		return 0
	}
}

type ExperienceService struct {
	Curve *LevelCurve
}

func NewExperienceService(curve *LevelCurve) *ExperienceService {
	return &ExperienceService{Curve: curve}
}

// AwardResult 单次发放经验的结果
type AwardResult struct {
	Reason        XPReason `json:"reason"`
	Amount        int      `json:"amount"`
	BonusXP       int      `json:"bonusXp"`
	PreviousLevel int      `json:"previousLevel"`
	Level         int      `json:"level"`
	TotalXP       int      `json:"totalXp"`
	LeveledUp     bool     `json:"leveledUp"`
}

// Award 按来源的默认金额发放经验
func (s *ExperienceService) Award(p *model.UserProgress, reason XPReason) (*AwardResult, error) {
	return s.AwardAmount(p, reason, reason.DefaultAmount())
}

// AwardAmount 发放指定金额的经验并重算等级。
// 如果重算后的等级高于之前的等级，额外发放一次升级奖励并再重算一次；
// 单次发放最多触发一次奖励，即使一次跨越多级。
// 金额为负时返回错误且不修改任何状态。
func (s *ExperienceService) AwardAmount(p *model.UserProgress, reason XPReason, amount int) (*AwardResult, error) {
	if amount < 0 {
		return nil, util.ErrNegativeAmount
	}

	previousLevel := p.Level
	newTotal := p.TotalXP + amount
	newLevel, err := s.Curve.LevelFor(newTotal)
	if err != nil {
		return nil, err
	}

	result := &AwardResult{
		Reason:        reason,
		Amount:        amount,
		PreviousLevel: previousLevel,
	}

	if newLevel > previousLevel {
		result.LeveledUp = true
		result.BonusXP = LevelUpBonusXP
		newTotal += LevelUpBonusXP
		newLevel, err = s.Curve.LevelFor(newTotal)
		if err != nil {
			return nil, err
		}
	}

	p.TotalXP = newTotal
	p.Level = newLevel
	result.Level = newLevel
	result.TotalXP = newTotal
	return result, nil
}

// ExperienceToNextLevel 查询接口，只读
func (s *ExperienceService) ExperienceToNextLevel(p *model.UserProgress) int {
	return s.Curve.ExperienceToNextLevel(p.Level, p.TotalXP)
}

// ProgressFraction 查询接口，只读
func (s *ExperienceService) ProgressFraction(p *model.UserProgress) float64 {
	return s.Curve.ProgressFraction(p.Level, p.TotalXP)
}
