package util

import "errors"

var (
	ErrNegativeAmount    = errors.New("经验值不能为负数")
	ErrInvalidLevelTable = errors.New("等级表必须以0开始且严格递增")

	ErrProgressNotFound  = errors.New("用户进度不存在")
	ErrCareerNotFound    = errors.New("career not found")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuestStepNotFound = errors.New("quest step not found")

	ErrQuizNotStarted       = errors.New("quiz session not started")
	ErrQuizAlreadyCompleted = errors.New("quiz session already completed")
	ErrQuizNotCompleted     = errors.New("quiz session not completed")
	ErrQuestionNotInQuiz    = errors.New("question does not belong to the current quiz")
	ErrAnswerNotInQuestion  = errors.New("answer does not belong to the question")
)
