package app

import (
	"context"
	"net/http"

	"dreampath_backend/internal/config"
	"dreampath_backend/internal/repository"
	"dreampath_backend/internal/service"
	"dreampath_backend/pkg/database"
	"dreampath_backend/pkg/logger"
	"dreampath_backend/pkg/monitoring"
	"dreampath_backend/pkg/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 组装配置、日志、数据库、目录和各服务。
// 本模块不自带任何对外界面，宿主（UI、CLI、HTTP层）直接使用这些服务。
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Catalog *service.CatalogService
	XP      *service.ExperienceService
	Badges  *service.BadgeService
	Streaks *service.StreakService
	Quizzes *service.QuizService

	// Progress 是推荐的变更入口，保证单写者和持久化
	Progress *service.ProgressService

	tracerProvider *sdktrace.TracerProvider
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	monitoring.Init()

	app := &App{Config: cfg}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("dreampath-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracerProvider = tp
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	app.DB = db

	catalog, err := service.NewCatalogService(cfg.Catalog.DataDir)
	if err != nil {
		return nil, err
	}
	app.Catalog = catalog

	curve := service.DefaultLevelCurve()
	if len(cfg.Gamification.LevelTable) > 0 {
		curve, err = service.NewLevelCurve(cfg.Gamification.LevelTable)
		if err != nil {
			return nil, err
		}
	}

	clock := service.SystemClock{}
	app.XP = service.NewExperienceService(curve)
	app.Badges = service.NewBadgeService(app.XP, clock)
	app.Streaks = service.NewStreakService()
	app.Quizzes = service.NewQuizService(catalog, clock)

	repo := repository.NewProgressRepository(db)
	app.Progress = service.NewProgressService(repo, catalog, app.XP, app.Badges, app.Streaks, app.Quizzes, clock)

	return app, nil
}

// Run 打印启动摘要。迁移和目录加载在 NewApp 中已经完成
func (a *App) Run() {
	logger.Log.Info("dreampath backend ready",
		zap.String("mode", a.Config.Server.Mode),
		zap.String("driver", a.Config.Database.Driver),
		zap.Int("careers", len(a.Catalog.Careers())),
		zap.Int("quizzes", len(a.Catalog.Quizzes())),
		zap.Int("maxLevel", a.XP.Curve.MaxLevel()))
}

// MetricsHandler 供宿主挂载 /metrics
func (a *App) MetricsHandler() http.Handler {
	return monitoring.Handler()
}

func (a *App) Shutdown(ctx context.Context) error {
	logger.Log.Sync()
	if a.tracerProvider != nil {
		return a.tracerProvider.Shutdown(ctx)
	}
	return nil
}
