package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"
	"dreampath_backend/pkg/logger"
	"dreampath_backend/pkg/monitoring"
	"dreampath_backend/pkg/tracing"

	"go.uber.org/zap"
)

// ProgressStore 进度持久化接口；gorm 实现见 internal/repository
type ProgressStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error)
	GetOrCreate(ctx context.Context, userID uint) (*model.UserProgress, error)
	Save(ctx context.Context, progress *model.UserProgress) error
	SaveWithQuizResult(ctx context.Context, progress *model.UserProgress, result *model.QuizResult) error
	FindQuizResultsByUser(ctx context.Context, userID uint) ([]model.QuizResult, error)
}

// ProgressService 把各游戏化组件组合成"变更返回事件"的入口。
// 每个用户一把互斥锁，保证同一条进度记录同一时刻只有一个写者；
// 每次变更先校验后修改，保存失败会作为错误返回（不吞掉）。
type ProgressService struct {
	Store   ProgressStore
	Catalog *CatalogService
	XP      *ExperienceService
	Badges  *BadgeService
	Streaks *StreakService
	Quizzes *QuizService
	Clock   Clock

	locks sync.Map // userID -> *sync.Mutex
}

func NewProgressService(
	store ProgressStore,
	catalog *CatalogService,
	xp *ExperienceService,
	badges *BadgeService,
	streaks *StreakService,
	quizzes *QuizService,
	clock Clock,
) *ProgressService {
	return &ProgressService{
		Store:   store,
		Catalog: catalog,
		XP:      xp,
		Badges:  badges,
		Streaks: streaks,
		Quizzes: quizzes,
		Clock:   clock,
	}
}

func (s *ProgressService) lock(userID uint) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ProgressEvents 一次变更产生的全部事件，由宿主决定如何渲染
type ProgressEvents struct {
	UserID        uint              `json:"userId"`
	XPAwarded     int               `json:"xpAwarded"`
	TotalXP       int               `json:"totalXp"`
	Level         int               `json:"level"`
	LeveledUp     bool              `json:"leveledUp"`
	StreakCount   int               `json:"streakCount"`
	StreakChanged bool              `json:"streakChanged"`
	StreakMessage string            `json:"streakMessage,omitempty"`
	NewBadges     []UnlockResult    `json:"newBadges,omitempty"`
	QuizResult    *model.QuizResult `json:"quizResult,omitempty"`
}

// finishMutation 评估徽章、汇总事件并通过 persist 落库。
// 指标只在落库成功后上报，失败的变更不产生任何可见痕迹
func (s *ProgressService) finishMutation(ctx context.Context, p *model.UserProgress, events *ProgressEvents, startXP, startLevel int, persist func(context.Context, *model.UserProgress) error) (*ProgressEvents, error) {
	newly, err := s.Badges.EvaluateAll(p)
	if err != nil {
		return nil, err
	}
	events.NewBadges = append(events.NewBadges, newly...)

	events.XPAwarded = p.TotalXP - startXP
	events.TotalXP = p.TotalXP
	events.Level = p.Level
	events.LeveledUp = p.Level > startLevel
	events.StreakCount = p.StreakCount

	if err := persist(ctx, p); err != nil {
		return nil, fmt.Errorf("save user progress: %w", err)
	}

	for _, unlock := range newly {
		monitoring.BadgeUnlocks.WithLabelValues(unlock.BadgeID).Inc()
		if unlock.Award != nil {
			monitoring.XPAwards.WithLabelValues(string(ReasonBadgeUnlock)).Add(float64(unlock.Award.Amount))
		}
	}
	return events, nil
}

// ExploreCareer 用户浏览一个职业：首次浏览发放探索经验，
// 并根据职业类别点亮 creator / helper 条件
func (s *ProgressService) ExploreCareer(ctx context.Context, userID uint, careerID string) (*ProgressEvents, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.ExploreCareer")
	defer span.End()

	career, err := s.Catalog.Career(careerID)
	if err != nil {
		return nil, err
	}

	defer s.lock(userID)()

	p, err := s.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	startXP, startLevel := p.TotalXP, p.Level
	events := &ProgressEvents{UserID: userID}

	firstExplore := !p.ExploredCareers.Contains(careerID)
	if firstExplore {
		p.ExploredCareers = p.ExploredCareers.Add(careerID)
		if _, err := s.XP.Award(p, ReasonFirstExplore); err != nil {
			return nil, err
		}
	}
	if career.IsCreative() {
		p.TriedCreativeCareer = true
	}
	if career.IsHelping() {
		p.ExploredHelpingCareer = true
	}

	events, err = s.finishMutation(ctx, p, events, startXP, startLevel, s.Store.Save)
	if err != nil {
		return nil, err
	}
	if firstExplore {
		monitoring.XPAwards.WithLabelValues(string(ReasonFirstExplore)).Add(float64(ReasonFirstExplore.DefaultAmount()))
	}
	logger.Log.Info("career explored",
		zap.Uint("userId", userID),
		zap.String("careerId", careerID),
		zap.Int("xpAwarded", events.XPAwarded))
	return events, nil
}

// CompleteQuestStep 完成一个任务步骤。步骤自带经验值时按步骤发放，
// 否则按 quest_step 默认值。Learn 类型步骤计入 scholar 徽章
func (s *ProgressService) CompleteQuestStep(ctx context.Context, userID uint, careerID, stepID string) (*ProgressEvents, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.CompleteQuestStep")
	defer span.End()

	career, err := s.Catalog.Career(careerID)
	if err != nil {
		return nil, err
	}
	step := career.QuestStep(stepID)
	if step == nil {
		return nil, fmt.Errorf("%w: %s", util.ErrQuestStepNotFound, stepID)
	}

	defer s.lock(userID)()

	p, err := s.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	startXP, startLevel := p.TotalXP, p.Level
	events := &ProgressEvents{UserID: userID}

	amount := step.XPReward
	if amount <= 0 {
		amount = ReasonQuestStep.DefaultAmount()
	}
	if _, err := s.XP.AwardAmount(p, ReasonQuestStep, amount); err != nil {
		return nil, err
	}
	if step.Type == model.QuestStepLearn {
		p.LearnStepsCompleted++
	}

	events, err = s.finishMutation(ctx, p, events, startXP, startLevel, s.Store.Save)
	if err != nil {
		return nil, err
	}
	monitoring.XPAwards.WithLabelValues(string(ReasonQuestStep)).Add(float64(amount))
	logger.Log.Info("quest step completed",
		zap.Uint("userId", userID),
		zap.String("careerId", careerID),
		zap.String("stepId", stepID),
		zap.Int("level", events.Level))
	return events, nil
}

// CompleteCareerPath 完成整条职业路径，计入 explorer 徽章。
// 已完成过的路径重复提交不再发放经验
func (s *ProgressService) CompleteCareerPath(ctx context.Context, userID uint, careerID string) (*ProgressEvents, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.CompleteCareerPath")
	defer span.End()

	if _, err := s.Catalog.Career(careerID); err != nil {
		return nil, err
	}

	defer s.lock(userID)()

	p, err := s.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	startXP, startLevel := p.TotalXP, p.Level
	events := &ProgressEvents{UserID: userID}

	firstCompletion := !p.CompletedCareers.Contains(careerID)
	if firstCompletion {
		p.CompletedCareers = p.CompletedCareers.Add(careerID)
		if _, err := s.XP.Award(p, ReasonCareerPathComplete); err != nil {
			return nil, err
		}
	}

	events, err = s.finishMutation(ctx, p, events, startXP, startLevel, s.Store.Save)
	if err != nil {
		return nil, err
	}
	if firstCompletion {
		monitoring.XPAwards.WithLabelValues(string(ReasonCareerPathComplete)).Add(float64(ReasonCareerPathComplete.DefaultAmount()))
	}
	logger.Log.Info("career path completed",
		zap.Uint("userId", userID),
		zap.String("careerId", careerID),
		zap.Int("completedCareers", len(p.CompletedCareers)))
	return events, nil
}

// RecordDailyActivity 用户当天首次打开应用：推进连续天数并发放每日经验
func (s *ProgressService) RecordDailyActivity(ctx context.Context, userID uint) (*ProgressEvents, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.RecordDailyActivity")
	defer span.End()

	defer s.lock(userID)()

	p, err := s.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	startXP, startLevel := p.TotalXP, p.Level
	events := &ProgressEvents{UserID: userID}

	count, changed := s.Streaks.RecordActivity(p, s.Clock.Now())
	events.StreakChanged = changed
	if changed {
		if _, err := s.XP.Award(p, ReasonDailyStreak); err != nil {
			return nil, err
		}
	}

	events, err = s.finishMutation(ctx, p, events, startXP, startLevel, s.Store.Save)
	if err != nil {
		return nil, err
	}
	if changed {
		if count > 1 {
			monitoring.StreakExtensions.Inc()
		} else {
			monitoring.StreakResets.Inc()
		}
		monitoring.XPAwards.WithLabelValues(string(ReasonDailyStreak)).Add(float64(ReasonDailyStreak.DefaultAmount()))
	}
	events.StreakMessage = s.Streaks.MessageFor(events.StreakCount)
	logger.Log.Info("daily activity recorded",
		zap.Uint("userId", userID),
		zap.Int("streak", events.StreakCount),
		zap.String("lastActiveAt", p.LastActiveAt.Format(util.DateFormat)),
		zap.Bool("changed", changed))
	return events, nil
}

// CompleteQuiz 测验会话完成后结算：发放测验经验、保存结果、评估徽章
func (s *ProgressService) CompleteQuiz(ctx context.Context, userID uint, session *QuizSession) (*ProgressEvents, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.CompleteQuiz")
	defer span.End()

	if session == nil || session.Quiz == nil {
		return nil, util.ErrQuizNotStarted
	}
	if !session.Completed || session.Result == nil {
		return nil, util.ErrQuizNotCompleted
	}

	defer s.lock(userID)()

	p, err := s.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	startXP, startLevel := p.TotalXP, p.Level
	events := &ProgressEvents{UserID: userID}

	result := session.Result
	result.UserID = userID

	if _, err := s.XP.Award(p, ReasonQuizCompletion); err != nil {
		return nil, err
	}
	p.QuizzesCompleted++

	// 结果和进度同一事务落库，保存失败时测验结果也不可见
	events, err = s.finishMutation(ctx, p, events, startXP, startLevel,
		func(ctx context.Context, progress *model.UserProgress) error {
			return s.Store.SaveWithQuizResult(ctx, progress, result)
		})
	if err != nil {
		return nil, err
	}
	monitoring.XPAwards.WithLabelValues(string(ReasonQuizCompletion)).Add(float64(ReasonQuizCompletion.DefaultAmount()))
	monitoring.QuizCompletions.Inc()

	events.QuizResult = result
	logger.Log.Info("quiz completed",
		zap.Uint("userId", userID),
		zap.String("quizId", result.QuizID),
		zap.String("completedAt", result.CompletedAt.Format(util.TimeFormat)),
		zap.Int("totalScore", result.TotalScore))
	return events, nil
}

// BadgeView 徽章定义与用户状态的合并视图
type BadgeView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Details    string     `json:"details"`
	Icon       string     `json:"icon"`
	XPReward   int        `json:"xpReward"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// ProgressSnapshot 只读查询结果，无副作用
type ProgressSnapshot struct {
	UserID           uint        `json:"userId"`
	TotalXP          int         `json:"totalXp"`
	Level            int         `json:"level"`
	NextLevelXP      int         `json:"nextLevelXp"`
	LevelProgress    float64     `json:"levelProgress"`
	StreakCount      int         `json:"streakCount"`
	StreakMessage    string      `json:"streakMessage"`
	LastActiveAt     time.Time   `json:"lastActiveAt"`
	Badges           []BadgeView `json:"badges"`
	CompletedCareers []string    `json:"completedCareers"`
}

// Snapshot 汇总一个用户的游戏化状态
func (s *ProgressService) Snapshot(ctx context.Context, userID uint) (*ProgressSnapshot, error) {
	p, err := s.Store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := make([]BadgeView, 0, len(s.Badges.Definitions()))
	for _, def := range s.Badges.Definitions() {
		view := BadgeView{
			ID:       def.ID,
			Name:     def.Name,
			Details:  def.Details,
			Icon:     def.Icon,
			XPReward: def.XPReward,
		}
		if state := p.Badge(def.ID); state != nil {
			view.Unlocked = state.Unlocked
			view.UnlockedAt = state.UnlockedAt
		}
		badges = append(badges, view)
	}

	return &ProgressSnapshot{
		UserID:           p.UserID,
		TotalXP:          p.TotalXP,
		Level:            p.Level,
		NextLevelXP:      s.XP.ExperienceToNextLevel(p),
		LevelProgress:    s.XP.ProgressFraction(p),
		StreakCount:      p.StreakCount,
		StreakMessage:    s.Streaks.MessageFor(p.StreakCount),
		LastActiveAt:     p.LastActiveAt,
		Badges:           badges,
		CompletedCareers: p.CompletedCareers,
	}, nil
}

// QuizHistory 用户的历史测验结果，最新在前
func (s *ProgressService) QuizHistory(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	return s.Store.FindQuizResultsByUser(ctx, userID)
}
