package model

import (
	"time"
)

// StringSet 以JSON数组形式持久化的字符串集合（去重，保留插入顺序）
type StringSet []string

func (s StringSet) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Add 返回包含 v 的集合；已存在则原样返回
func (s StringSet) Add(v string) StringSet {
	if s.Contains(v) {
		return s
	}
	return append(s, v)
}

// UserProgress 记录用户的游戏化进度（经验、等级、连续天数、徽章）
// 不变量：Level 必须等于 LevelCurve 按 TotalXP 计算出的等级
type UserProgress struct {
	BaseModel
	UserID                uint         `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	TotalXP               int          `gorm:"default:0" json:"totalXp"`
	Level                 int          `gorm:"default:1" json:"level"`
	StreakCount           int          `gorm:"default:0" json:"streakCount"`
	LastActiveAt          time.Time    `json:"lastActiveAt"`
	LearnStepsCompleted   int          `gorm:"default:0" json:"learnStepsCompleted"`
	QuizzesCompleted      int          `gorm:"default:0" json:"quizzesCompleted"`
	TriedCreativeCareer   bool         `gorm:"default:false" json:"triedCreativeCareer"`
	ExploredHelpingCareer bool         `gorm:"default:false" json:"exploredHelpingCareer"`
	Badges                []BadgeState `gorm:"foreignKey:ProgressID" json:"badges"`
	ExploredCareers       StringSet    `gorm:"serializer:json" json:"exploredCareers"`
	CompletedCareers      StringSet    `gorm:"serializer:json" json:"completedCareers"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// Badge 返回指定徽章的状态，未评估过则返回 nil
func (p *UserProgress) Badge(badgeID string) *BadgeState {
	for i := range p.Badges {
		if p.Badges[i].BadgeID == badgeID {
			return &p.Badges[i]
		}
	}
	return nil
}

func (p *UserProgress) HasBadge(badgeID string) bool {
	b := p.Badge(badgeID)
	return b != nil && b.Unlocked
}
