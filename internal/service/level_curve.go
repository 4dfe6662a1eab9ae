package service

import (
	"dreampath_backend/internal/util"
)

// LevelCurve 等级曲线：阈值表将累计经验映射为等级
// 表长为 N 时等级最高为 N（表耗尽后经验继续累计但不再升级）
type LevelCurve struct {
	thresholds []int
}

// 默认曲线：L1=0XP, L2=100XP, L3=250XP, L4=450XP...
var defaultThresholds = []int{0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700, 3250}

func DefaultLevelCurve() *LevelCurve {
	curve, _ := NewLevelCurve(defaultThresholds)
	return curve
}

// NewLevelCurve 校验阈值表：首项为0，其后严格递增
func NewLevelCurve(thresholds []int) (*LevelCurve, error) {
	if len(thresholds) == 0 || thresholds[0] != 0 {
		return nil, util.ErrInvalidLevelTable
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, util.ErrInvalidLevelTable
		}
	}
	table := make([]int, len(thresholds))
	copy(table, thresholds)
	return &LevelCurve{thresholds: table}, nil
}

// MaxLevel 曲线能产生的最高等级
func (c *LevelCurve) MaxLevel() int {
	return len(c.thresholds)
}

// LevelFor 计算累计经验对应的等级（从1开始）
func (c *LevelCurve) LevelFor(totalXP int) (int, error) {
	if totalXP < 0 {
		return 0, util.ErrNegativeAmount
	}
	for i, required := range c.thresholds {
		if totalXP < required {
			return i, nil
		}
	}
	return len(c.thresholds), nil
}

// ExperienceToNextLevel 升到下一级还需要的经验；已到表尾返回0
func (c *LevelCurve) ExperienceToNextLevel(currentLevel, totalXP int) int {
	if currentLevel < 1 || currentLevel >= len(c.thresholds) {
		return 0
	}
	remaining := c.thresholds[currentLevel] - totalXP
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressFraction 当前等级区间内的进度 [0,1]
// 区间下界（本级阈值）为0.0，上界（下一级阈值）为1.0
func (c *LevelCurve) ProgressFraction(currentLevel, totalXP int) float64 {
	if currentLevel <= 0 || currentLevel >= len(c.thresholds) {
		return 0
	}
	lower := c.thresholds[currentLevel-1]
	upper := c.thresholds[currentLevel]
	fraction := float64(totalXP-lower) / float64(upper-lower)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}
