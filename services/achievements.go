package services

import "maze-quiz-system/models"

// Achievement thresholds. Fixed policy, not configurable per level.
const (
	FastFinishMinTimeLeft  = 30
	WallBreakerMinTotal    = 10
	firstWinAttemptCount   = 1
	noWallBreakWallsBroken = 0
)

// AttemptFacts is the slice of the current attempt the rules care about.
type AttemptFacts struct {
	Level       int
	Score       int64
	WallsBroken int
	TimeLeft    int
}

// AchievementRule decides whether one code qualifies.
type AchievementRule struct {
	Code    string
	Applies func(a AttemptFacts, agg LedgerAggregates) bool
}

// AchievementRules are evaluated independently; order only affects the order
// of the returned codes.
var AchievementRules = []AchievementRule{
	{
		Code: models.AchievementFirstWin,
		Applies: func(_ AttemptFacts, agg LedgerAggregates) bool {
			return agg.AttemptCount == firstWinAttemptCount
		},
	},
	{
		Code: models.AchievementNoWallBreak,
		Applies: func(a AttemptFacts, _ LedgerAggregates) bool {
			return a.WallsBroken == noWallBreakWallsBroken
		},
	},
	{
		Code: models.AchievementFastFinish,
		Applies: func(a AttemptFacts, _ LedgerAggregates) bool {
			return a.TimeLeft >= FastFinishMinTimeLeft
		},
	},
	{
		Code: models.AchievementWallBreaker,
		Applies: func(_ AttemptFacts, agg LedgerAggregates) bool {
			return agg.TotalWallsBroken >= WallBreakerMinTotal
		},
	},
}

// EvaluateAchievements returns every code the attempt qualifies for. It does
// not know what the user already holds; the grant store deduplicates.
func EvaluateAchievements(a AttemptFacts, agg LedgerAggregates) []string {
	var codes []string
	for _, rule := range AchievementRules {
		if rule.Applies(a, agg) {
			codes = append(codes, rule.Code)
		}
	}
	return codes
}
