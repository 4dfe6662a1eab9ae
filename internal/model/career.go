package model

import "strings"

// 职业类别，与目录JSON中的 categories 字段一致
const (
	CategoryScience       = "Science"
	CategoryTech          = "Technology"
	CategoryArts          = "Arts"
	CategoryTrades        = "Trades"
	CategoryHealth        = "Health"
	CategoryPublicService = "Public Service"
	CategoryOutdoors      = "Outdoors"
	CategoryBusiness      = "Business"
)

// QuestStep 职业任务步骤
type QuestStep struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // Learn / Try / Path / Skills
	Title    string `json:"title"`
	Content  string `json:"content"`
	XPReward int    `json:"xpReward"`
}

const (
	QuestStepLearn  = "Learn"
	QuestStepTry    = "Try"
	QuestStepPath   = "Path"
	QuestStepSkills = "Skills"
)

// Career 职业目录条目（静态数据，外部JSON提供）
type Career struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Emoji      string      `json:"emoji"`
	Categories []string    `json:"categories"`
	Activities []string    `json:"activities"`
	QuizTags   []string    `json:"quizTags"`
	QuestSteps []QuestStep `json:"questSteps"`
}

func (c *Career) QuestStep(stepID string) *QuestStep {
	for i := range c.QuestSteps {
		if c.QuestSteps[i].ID == stepID {
			return &c.QuestSteps[i]
		}
	}
	return nil
}

func (c *Career) hasCategory(category string) bool {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat, category) {
			return true
		}
	}
	return false
}

// IsCreative 艺术类职业，驱动 creator 徽章
func (c *Career) IsCreative() bool {
	return c.hasCategory(CategoryArts)
}

// IsHelping 医疗/公共服务类职业，驱动 helper 徽章
func (c *Career) IsHelping() bool {
	return c.hasCategory(CategoryHealth) || c.hasCategory(CategoryPublicService)
}

// Program 与职业相关的培养项目（静态数据）
type Program struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Institution string   `json:"institution"`
	Region      string   `json:"region"`
	Level       string   `json:"level"`
	Duration    string   `json:"duration"`
	Category    string   `json:"category"`
	URL         string   `json:"url,omitempty"`
	Description string   `json:"description"`
	CareerIDs   []string `json:"careerIds"`
}
