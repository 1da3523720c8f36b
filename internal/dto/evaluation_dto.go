package dto

// Performance trend labels.
const (
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDeclining        = "declining"
	TrendInsufficientData = "insufficient_data"
)

// Readiness tiers.
const (
	TierExcellent        = "excellent"
	TierVeryGood         = "very_good"
	TierGood             = "good"
	TierNeedsImprovement = "needs_improvement"
	TierNotReady         = "not_ready"
)

// PerformanceAnalysis aggregates a student's recent session history.
type PerformanceAnalysis struct {
	WindowDays          int      `json:"window_days"`
	TotalSessions       int      `json:"total_sessions"`
	CompletedSessions   int      `json:"completed_sessions"`
	CompletionRate      float64  `json:"completion_rate"`
	AverageScore        float64  `json:"average_score"`
	ErrorRate           float64  `json:"error_rate"`
	ConsistencyRate     float64  `json:"consistency_rate"`
	DistinctActiveDays  int      `json:"distinct_active_days"`
	Trend               string   `json:"trend"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// ReadinessBreakdown exposes the five rubric sub-scores.
type ReadinessBreakdown struct {
	Completion  float64 `json:"completion"`
	Performance float64 `json:"performance"`
	Consistency float64 `json:"consistency"`
	Mastery     float64 `json:"mastery"`
	Tenure      float64 `json:"tenure"`
}

// ReadinessResult is the scored progression recommendation.
type ReadinessResult struct {
	Score           float64            `json:"score"`
	Tier            string             `json:"tier"`
	Ready           bool               `json:"ready"`
	Confidence      string             `json:"confidence"`
	Breakdown       ReadinessBreakdown `json:"breakdown"`
	Recommendations []string           `json:"recommendations"`
	NextSteps       []string           `json:"next_steps"`
}

// EvaluationResponse is the result of evaluating a single student.
type EvaluationResponse struct {
	StudentID uint                `json:"student_id"`
	Analysis  PerformanceAnalysis `json:"analysis"`
	Readiness ReadinessResult     `json:"readiness"`
	Alerts    []AlertResponse     `json:"alerts"`
}

// SweepError records one student's failure during a batch sweep.
type SweepError struct {
	StudentID uint   `json:"student_id"`
	Error     string `json:"error"`
}

// SweepSummary reports the outcome of a batch evaluation. Individual
// failures never abort the sweep.
type SweepSummary struct {
	Evaluated     int          `json:"evaluated"`
	AlertsCreated int          `json:"alerts_created"`
	Errors        []SweepError `json:"errors"`
}
