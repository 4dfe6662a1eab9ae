package model

import (
	"time"
)

// BadgeDefinition 徽章目录条目（静态，启动后不再变化）
// Condition 基于用户进度判断是否满足解锁条件
type BadgeDefinition struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Details   string                   `json:"details"`
	Icon      string                   `json:"icon"`
	XPReward  int                      `json:"xpReward"`
	Condition func(*UserProgress) bool `json:"-"`
}

// BadgeState 用户持有的徽章状态，解锁后不可回退
type BadgeState struct {
	BaseModel
	ProgressID uint       `gorm:"index:idx_progress_badge,unique;type:bigint unsigned;not null" json:"-"`
	BadgeID    string     `gorm:"size:50;index:idx_progress_badge,unique;not null" json:"badgeId"`
	Unlocked   bool       `gorm:"default:false" json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

func (BadgeState) TableName() string {
	return "badge_states"
}
