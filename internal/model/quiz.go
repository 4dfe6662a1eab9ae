package model

import (
	"time"
)

// Quiz 测验定义（静态数据，外部JSON提供）
type Quiz struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions"`
	Tags        []string       `json:"tags"`
}

type QuizQuestion struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Answers []QuizAnswer `json:"answers"`
	Tags    []string     `json:"tags"`
}

// QuizAnswer 每个答案对其携带的所有标签贡献 Weight 分
type QuizAnswer struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Tags   []string `json:"tags"`
	Weight int      `json:"weight"`
}

func (q *Quiz) Question(questionID string) *QuizQuestion {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

func (q *QuizQuestion) Answer(answerID string) *QuizAnswer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}

// QuizResult 存储用户的测验结果
type QuizResult struct {
	UUIDBase
	UserID      uint           `gorm:"index;type:bigint unsigned" json:"userId"`
	QuizID      string         `gorm:"size:50;index" json:"quizId"`
	ScoreVector map[string]int `gorm:"serializer:json" json:"scoreVector"`
	TopCareers  []string       `gorm:"serializer:json" json:"topCareers"`
	Rationale   string         `gorm:"type:text" json:"rationale"`
	TotalScore  int            `gorm:"not null" json:"totalScore"`
	CompletedAt time.Time      `json:"completedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
