package service

import (
	"fmt"
	"sort"
	"strings"

	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"
)

// QuizSession 一次进行中的测验（瞬态，放弃或重新开始即丢弃）
type QuizSession struct {
	Quiz          *model.Quiz
	QuestionIndex int
	Answers       map[string]string // questionId -> answerId
	Completed     bool
	Result        *model.QuizResult
}

type QuizService struct {
	Catalog *CatalogService
	Clock   Clock
}

func NewQuizService(catalog *CatalogService, clock Clock) *QuizService {
	return &QuizService{Catalog: catalog, Clock: clock}
}

// Start 按ID开始一次测验
func (s *QuizService) Start(quizID string) (*QuizSession, error) {
	quiz, err := s.Catalog.Quiz(quizID)
	if err != nil {
		return nil, err
	}
	return s.StartQuiz(quiz), nil
}

// StartQuiz 开始一次新的测验会话，丢弃此前的答案
func (s *QuizService) StartQuiz(quiz *model.Quiz) *QuizSession {
	return &QuizSession{
		Quiz:    quiz,
		Answers: make(map[string]string),
	}
}

// Answer 记录一个答案（同题重答后写覆盖先写）。还有剩余题目时前进一题，
// 否则标记完成并立刻计分。问题不属于当前测验、或答案不属于该问题时
// 返回错误且不改变会话状态。最后一题作答后返回 true。
func (s *QuizService) Answer(session *QuizSession, questionID, answerID string) (bool, error) {
	if session == nil || session.Quiz == nil {
		return false, util.ErrQuizNotStarted
	}
	if session.Completed {
		return false, util.ErrQuizAlreadyCompleted
	}

	question := session.Quiz.Question(questionID)
	if question == nil {
		return false, fmt.Errorf("%w: %s", util.ErrQuestionNotInQuiz, questionID)
	}
	if question.Answer(answerID) == nil {
		return false, fmt.Errorf("%w: %s", util.ErrAnswerNotInQuestion, answerID)
	}

	session.Answers[questionID] = answerID

	if session.QuestionIndex < len(session.Quiz.Questions)-1 {
		session.QuestionIndex++
		return false, nil
	}

	s.complete(session)
	return true, nil
}

// CurrentQuestion 当前待回答的问题；会话未开始或已完成时返回 nil
func (s *QuizService) CurrentQuestion(session *QuizSession) *model.QuizQuestion {
	if session == nil || session.Quiz == nil || session.Completed {
		return nil
	}
	if session.QuestionIndex >= len(session.Quiz.Questions) {
		return nil
	}
	return &session.Quiz.Questions[session.QuestionIndex]
}

// Progress 答题进度 [0,1]；未开始为0
func (s *QuizService) Progress(session *QuizSession) float64 {
	if session == nil || session.Quiz == nil || len(session.Quiz.Questions) == 0 {
		return 0
	}
	return float64(session.QuestionIndex) / float64(len(session.Quiz.Questions))
}

func (s *QuizService) complete(session *QuizSession) {
	vector, tagOrder := s.scoreVector(session)
	topCareers := s.rankCareers(vector)
	rationale := rationaleFor(vector, tagOrder)

	total := 0
	for _, score := range vector {
		total += score
	}

	session.Result = &model.QuizResult{
		UUIDBase:    model.UUIDBase{ID: model.GenerateUUID()},
		QuizID:      session.Quiz.ID,
		ScoreVector: vector,
		TopCareers:  topCareers,
		Rationale:   rationale,
		TotalScore:  total,
		CompletedAt: s.Clock.Now(),
	}
	session.Completed = true
}

// scoreVector 按题目顺序累加每个标签的加权得分。
// 未作答的题目不计分也不扣分。额外返回标签首次出现的顺序，
// 供文案生成时打破平分。
func (s *QuizService) scoreVector(session *QuizSession) (map[string]int, []string) {
	vector := make(map[string]int)
	var tagOrder []string

	for _, question := range session.Quiz.Questions {
		answerID, answered := session.Answers[question.ID]
		if !answered {
			continue
		}
		answer := question.Answer(answerID)
		if answer == nil {
			continue
		}
		for _, tag := range answer.Tags {
			if _, seen := vector[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			vector[tag] += answer.Weight
		}
	}
	return vector, tagOrder
}

// rankCareers 每个职业的匹配分 = 其标签在得分向量中的分值之和。
// 按分值降序取前5，平分保持目录顺序。
func (s *QuizService) rankCareers(vector map[string]int) []string {
	careers := s.Catalog.Careers()

	type careerScore struct {
		id    string
		score int
	}
	scores := make([]careerScore, 0, len(careers))
	for _, career := range careers {
		matchScore := 0
		for _, tag := range career.QuizTags {
			matchScore += vector[tag]
		}
		scores = append(scores, careerScore{id: career.ID, score: matchScore})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	limit := 5
	if len(scores) < limit {
		limit = len(scores)
	}
	top := make([]string, 0, limit)
	for _, entry := range scores[:limit] {
		top = append(top, entry.id)
	}
	return top
}

// rationaleFor 取得分最高的前3个标签生成文案，平分按首次出现顺序
func rationaleFor(vector map[string]int, tagOrder []string) string {
	if len(tagOrder) == 0 {
		return "Keep exploring to discover your interests!"
	}

	tags := make([]string, len(tagOrder))
	copy(tags, tagOrder)
	sort.SliceStable(tags, func(i, j int) bool {
		return vector[tags[i]] > vector[tags[j]]
	})

	if len(tags) > 3 {
		tags = tags[:3]
	}
	return "Based on your interests in " + strings.Join(tags, ", ") +
		", we've matched you with careers that align with your personality and strengths."
}
