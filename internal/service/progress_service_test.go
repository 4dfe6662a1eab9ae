package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"
	"dreampath_backend/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProgressStore struct {
	progress    map[uint]*model.UserProgress
	quizResults []model.QuizResult

	saveCalls int
	saveErr   error
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{progress: make(map[uint]*model.UserProgress)}
}

func (f *fakeProgressStore) FindByUserID(_ context.Context, userID uint) (*model.UserProgress, error) {
	p, ok := f.progress[userID]
	if !ok {
		return nil, util.ErrProgressNotFound
	}
	return p, nil
}

func (f *fakeProgressStore) GetOrCreate(_ context.Context, userID uint) (*model.UserProgress, error) {
	if p, ok := f.progress[userID]; ok {
		return p, nil
	}
	p := &model.UserProgress{UserID: userID, Level: 1}
	f.progress[userID] = p
	return p, nil
}

func (f *fakeProgressStore) Save(_ context.Context, p *model.UserProgress) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.progress[p.UserID] = p
	return nil
}

func (f *fakeProgressStore) SaveWithQuizResult(_ context.Context, p *model.UserProgress, result *model.QuizResult) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.progress[p.UserID] = p
	f.quizResults = append(f.quizResults, *result)
	return nil
}

func (f *fakeProgressStore) FindQuizResultsByUser(_ context.Context, userID uint) ([]model.QuizResult, error) {
	var out []model.QuizResult
	for _, r := range f.quizResults {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func testCareers() []model.Career {
	careers := []model.Career{
		{
			ID:         "career-art",
			Title:      "Illustrator",
			Categories: []string{model.CategoryArts},
			QuizTags:   []string{"art"},
			QuestSteps: []model.QuestStep{
				{ID: "s1", Type: model.QuestStepLearn, Title: "learn", XPReward: 50},
			},
		},
		{
			ID:         "career-health",
			Title:      "Paramedic",
			Categories: []string{model.CategoryHealth},
			QuizTags:   []string{"helping"},
			QuestSteps: []model.QuestStep{
				{ID: "s1", Type: model.QuestStepLearn, Title: "learn", XPReward: 50},
			},
		},
	}
	for _, id := range []string{"career-3", "career-4", "career-5"} {
		careers = append(careers, model.Career{
			ID:         id,
			Title:      id,
			Categories: []string{model.CategoryTech},
			QuizTags:   []string{"tech"},
			QuestSteps: []model.QuestStep{
				{ID: "s1", Type: model.QuestStepLearn, Title: "learn", XPReward: 50},
			},
		})
	}
	return careers
}

func newTestProgressService(t *testing.T, store ProgressStore) (*ProgressService, *fixedClock) {
	t.Helper()
	curve, err := NewLevelCurve([]int{0, 100, 250, 450})
	if err != nil {
		t.Fatalf("NewLevelCurve: %v", err)
	}
	catalog := &CatalogService{
		careers: testCareers(),
		quizzes: []model.Quiz{
			{
				ID: "quiz-1",
				Questions: []model.QuizQuestion{
					{ID: "q1", Answers: []model.QuizAnswer{{ID: "a1", Tags: []string{"art"}, Weight: 10}}},
				},
			},
		},
	}
	clock := &fixedClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	xp := NewExperienceService(curve)
	badges := NewBadgeService(xp, clock)
	quizzes := NewQuizService(catalog, clock)
	svc := NewProgressService(store, catalog, xp, badges, NewStreakService(), quizzes, clock)
	return svc, clock
}

func TestQuestStepsAndCareerPathsEndToEnd(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	// step 1: 50 xp, still level 1
	events, err := svc.CompleteQuestStep(ctx, 7, "career-3", "s1")
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if events.XPAwarded != 50 || events.Level != 1 || events.LeveledUp {
		t.Fatalf("step 1 events = %+v", events)
	}

	// step 2: crosses 100 into level 2, one-time bonus 50 -> 150 total
	events, err = svc.CompleteQuestStep(ctx, 7, "career-3", "s1")
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if !events.LeveledUp || events.Level != 2 || events.TotalXP != 150 {
		t.Fatalf("step 2 events = %+v", events)
	}

	// step 3: third learn step unlocks scholar (+150), crossing into level 3
	events, err = svc.CompleteQuestStep(ctx, 7, "career-3", "s1")
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if len(events.NewBadges) != 1 || events.NewBadges[0].BadgeID != "scholar" {
		t.Fatalf("step 3 should unlock scholar, events = %+v", events)
	}
	// 150 +50 step = 200, +150 scholar = 350 -> level 3, +50 bonus = 400
	if events.TotalXP != 400 || events.Level != 3 {
		t.Fatalf("step 3 totals = xp %d level %d, want 400/3", events.TotalXP, events.Level)
	}

	// completing five career paths unlocks explorer on the fifth,
	// in the same evaluation pass as the path completion
	careerIDs := []string{"career-art", "career-health", "career-3", "career-4", "career-5"}
	for i, careerID := range careerIDs {
		events, err = svc.CompleteCareerPath(ctx, 7, careerID)
		if err != nil {
			t.Fatalf("path %d: %v", i+1, err)
		}
		if i < 4 && len(events.NewBadges) != 0 {
			t.Fatalf("path %d unexpectedly unlocked %v", i+1, events.NewBadges)
		}
	}
	if len(events.NewBadges) != 1 || events.NewBadges[0].BadgeID != "explorer" {
		t.Fatalf("fifth path should unlock explorer, events = %+v", events)
	}

	p := store.progress[7]
	if len(p.CompletedCareers) != 5 {
		t.Errorf("CompletedCareers = %d, want 5", len(p.CompletedCareers))
	}
	if p.Level != 4 {
		t.Errorf("Level = %d, want 4 (table bound)", p.Level)
	}
	if store.saveCalls != 8 {
		t.Errorf("saveCalls = %d, want one per mutation (8)", store.saveCalls)
	}
}

func TestCompleteCareerPathIsIdempotent(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	first, err := svc.CompleteCareerPath(ctx, 1, "career-3")
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if first.XPAwarded == 0 {
		t.Fatal("first completion should award xp")
	}

	second, err := svc.CompleteCareerPath(ctx, 1, "career-3")
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if second.XPAwarded != 0 {
		t.Errorf("repeat completion awarded %d xp", second.XPAwarded)
	}
	if len(store.progress[1].CompletedCareers) != 1 {
		t.Errorf("career recorded twice")
	}
}

func TestExploreCareerFlagsAndFirstExploreXP(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	// a tech career unlocks nothing, so the delta is the bare first-explore xp
	events, err := svc.ExploreCareer(ctx, 2, "career-3")
	if err != nil {
		t.Fatalf("ExploreCareer: %v", err)
	}
	if events.XPAwarded != 10 {
		t.Errorf("first explore awarded %d xp, want 10", events.XPAwarded)
	}

	again, err := svc.ExploreCareer(ctx, 2, "career-3")
	if err != nil {
		t.Fatalf("second explore: %v", err)
	}
	if again.XPAwarded != 0 {
		t.Errorf("repeat explore awarded %d xp", again.XPAwarded)
	}

	// exploring an arts career sets the flag and unlocks creator in the same call
	events, err = svc.ExploreCareer(ctx, 2, "career-art")
	if err != nil {
		t.Fatalf("explore arts career: %v", err)
	}
	if !store.progress[2].TriedCreativeCareer {
		t.Error("arts career should set TriedCreativeCareer")
	}
	if len(events.NewBadges) != 1 || events.NewBadges[0].BadgeID != "creator" {
		t.Fatalf("expected creator unlock, events = %+v", events)
	}

	events, err = svc.ExploreCareer(ctx, 2, "career-health")
	if err != nil {
		t.Fatalf("explore health career: %v", err)
	}
	if !store.progress[2].ExploredHelpingCareer {
		t.Error("health career should set ExploredHelpingCareer")
	}
	if len(events.NewBadges) != 1 || events.NewBadges[0].BadgeID != "helper" {
		t.Fatalf("expected helper unlock, events = %+v", events)
	}
}

func TestExploreCareerUnknownID(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)

	_, err := svc.ExploreCareer(context.Background(), 2, "missing")
	if !errors.Is(err, util.ErrCareerNotFound) {
		t.Fatalf("expected ErrCareerNotFound, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Error("failed operation should not save")
	}
}

func TestRecordDailyActivityStreakFlow(t *testing.T) {
	store := newFakeProgressStore()
	svc, clock := newTestProgressService(t, store)
	ctx := context.Background()

	events, err := svc.RecordDailyActivity(ctx, 3)
	if err != nil {
		t.Fatalf("day 1: %v", err)
	}
	if events.StreakCount != 1 || !events.StreakChanged || events.XPAwarded != 25 {
		t.Fatalf("day 1 events = %+v", events)
	}

	// same day again: nothing changes, no xp
	events, err = svc.RecordDailyActivity(ctx, 3)
	if err != nil {
		t.Fatalf("same day: %v", err)
	}
	if events.StreakChanged || events.XPAwarded != 0 {
		t.Fatalf("same-day events = %+v", events)
	}

	// four more consecutive days reach the streaker badge
	for i := 0; i < 4; i++ {
		clock.Advance(24 * time.Hour)
		events, err = svc.RecordDailyActivity(ctx, 3)
		if err != nil {
			t.Fatalf("day %d: %v", i+2, err)
		}
	}
	if events.StreakCount != 5 {
		t.Fatalf("StreakCount = %d, want 5", events.StreakCount)
	}
	if len(events.NewBadges) != 1 || events.NewBadges[0].BadgeID != "streaker" {
		t.Fatalf("expected streaker unlock on day 5, events = %+v", events)
	}
	if events.StreakMessage == "" {
		t.Error("missing streak message")
	}
}

func TestRecordDailyActivityLogsActivityDate(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	store := newFakeProgressStore()
	svc, clock := newTestProgressService(t, store)

	if _, err := svc.RecordDailyActivity(context.Background(), 3); err != nil {
		t.Fatalf("RecordDailyActivity: %v", err)
	}

	entries := logs.FilterMessage("daily activity recorded").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	got := entries[0].ContextMap()["lastActiveAt"]
	if want := clock.Now().Format(util.DateFormat); got != want {
		t.Errorf("lastActiveAt logged as %v, want %s", got, want)
	}
}

func TestCompleteQuizPersistsResultAndCounts(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	runQuiz := func() *QuizSession {
		session, err := svc.Quizzes.Start("quiz-1")
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if _, err := svc.Quizzes.Answer(session, "q1", "a1"); err != nil {
			t.Fatalf("Answer: %v", err)
		}
		return session
	}

	var events *ProgressEvents
	var err error
	for i := 0; i < 3; i++ {
		events, err = svc.CompleteQuiz(ctx, 4, runQuiz())
		if err != nil {
			t.Fatalf("CompleteQuiz %d: %v", i+1, err)
		}
	}

	if store.progress[4].QuizzesCompleted != 3 {
		t.Errorf("QuizzesCompleted = %d, want 3", store.progress[4].QuizzesCompleted)
	}
	if len(store.quizResults) != 3 {
		t.Errorf("stored quiz results = %d, want 3", len(store.quizResults))
	}
	if events.QuizResult == nil || events.QuizResult.UserID != 4 {
		t.Fatalf("events.QuizResult = %+v", events.QuizResult)
	}

	// third quiz unlocks analyst
	found := false
	for _, b := range events.NewBadges {
		if b.BadgeID == "analyst" {
			found = true
		}
	}
	if !found {
		t.Errorf("third quiz should unlock analyst, got %+v", events.NewBadges)
	}

	history, err := svc.QuizHistory(ctx, 4)
	if err != nil {
		t.Fatalf("QuizHistory: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history = %d results, want 3", len(history))
	}
}

func TestCompleteQuizRejectsUnfinishedSession(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)

	session, err := svc.Quizzes.Start("quiz-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = svc.CompleteQuiz(context.Background(), 4, session)
	if !errors.Is(err, util.ErrQuizNotCompleted) {
		t.Fatalf("expected ErrQuizNotCompleted, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Error("rejected session should not save")
	}
}

func TestSaveFailureIsSurfaced(t *testing.T) {
	store := newFakeProgressStore()
	store.saveErr = errors.New("disk full")
	svc, _ := newTestProgressService(t, store)

	_, err := svc.CompleteQuestStep(context.Background(), 5, "career-3", "s1")
	if err == nil || !errors.Is(err, store.saveErr) {
		t.Fatalf("save failure not surfaced, err = %v", err)
	}
}

func TestCompleteQuizSaveFailureLeavesNoResult(t *testing.T) {
	store := newFakeProgressStore()
	store.saveErr = errors.New("disk full")
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	session, err := svc.Quizzes.Start("quiz-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Quizzes.Answer(session, "q1", "a1"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	_, err = svc.CompleteQuiz(ctx, 4, session)
	if err == nil || !errors.Is(err, store.saveErr) {
		t.Fatalf("save failure not surfaced, err = %v", err)
	}

	// 保存失败时测验结果不得落库
	history, err := svc.QuizHistory(ctx, 4)
	if err != nil {
		t.Fatalf("QuizHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("quiz result visible after failed save: %d rows", len(history))
	}
	if len(store.quizResults) != 0 {
		t.Fatalf("store kept %d quiz results after failed save", len(store.quizResults))
	}
}

func TestSnapshot(t *testing.T) {
	store := newFakeProgressStore()
	svc, _ := newTestProgressService(t, store)
	ctx := context.Background()

	if _, err := svc.Snapshot(ctx, 9); !errors.Is(err, util.ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound for unknown user, got %v", err)
	}

	if _, err := svc.CompleteQuestStep(ctx, 9, "career-3", "s1"); err != nil {
		t.Fatalf("CompleteQuestStep: %v", err)
	}

	snapshot, err := svc.Snapshot(ctx, 9)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.TotalXP != 50 || snapshot.Level != 1 {
		t.Errorf("snapshot = xp %d level %d, want 50/1", snapshot.TotalXP, snapshot.Level)
	}
	if snapshot.NextLevelXP != 50 {
		t.Errorf("NextLevelXP = %d, want 50", snapshot.NextLevelXP)
	}
	if snapshot.LevelProgress != 0.5 {
		t.Errorf("LevelProgress = %v, want 0.5", snapshot.LevelProgress)
	}
	if len(snapshot.Badges) != 6 {
		t.Errorf("snapshot badges = %d, want the 6 catalog badges", len(snapshot.Badges))
	}
	if snapshot.StreakMessage == "" {
		t.Error("missing streak message")
	}
}
