package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	XPAwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Total experience points awarded, by reason",
		},
		[]string{"reason"},
	)

	BadgeUnlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badge_unlocks_total",
			Help: "Total badge unlocks, by badge id",
		},
		[]string{"badge"},
	)

	QuizCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_completions_total",
			Help: "Total completed quiz sessions",
		},
	)

	StreakExtensions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_extensions_total",
			Help: "Total consecutive-day streak extensions",
		},
	)

	StreakResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_resets_total",
			Help: "Total streak resets back to day 1",
		},
	)
)

func Init() {
	prometheus.MustRegister(XPAwards)
	prometheus.MustRegister(BadgeUnlocks)
	prometheus.MustRegister(QuizCompletions)
	prometheus.MustRegister(StreakExtensions)
	prometheus.MustRegister(StreakResets)
}

// Handler 暴露给宿主挂载的 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
