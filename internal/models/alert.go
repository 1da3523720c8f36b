package models

import "time"

// Alert types emitted by the evaluation pipeline.
const (
	AlertTypeLevelProgression     = "level_progression"
	AlertTypeCurriculumAdjustment = "curriculum_adjustment"
	AlertTypePerformance          = "performance_alert"
	AlertTypeCompletionMilestone  = "completion_milestone"
	AlertTypeAttentionNeeded      = "attention_needed"
	AlertTypeRecommendation       = "recommendation"
)

// Alert priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Alert statuses. Applied and dismissed are terminal.
const (
	AlertStatusPending   = "pending"
	AlertStatusReviewed  = "reviewed"
	AlertStatusApplied   = "applied"
	AlertStatusDismissed = "dismissed"
)

// Teacher decisions on a pending alert.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionDefer   = "defer"
)

// PerformanceSnapshot captures the metrics that triggered an alert.
type PerformanceSnapshot struct {
	ReadinessScore      float64 `json:"readiness_score"`
	ConsecutiveSessions int     `json:"consecutive_sessions"`
	CompletionPct       float64 `json:"completion_pct"`
	AverageScore        float64 `json:"average_score"`
}

// CurriculumAlert is a recommendation awaiting teacher review. Lifecycle:
// pending -> reviewed -> applied | dismissed, or pending -> dismissed.
type CurriculumAlert struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	StudentID             uint   `gorm:"not null;index" json:"student_id"`
	TeacherID             uint   `gorm:"not null" json:"teacher_id"`
	CurrentCurriculumID   uint   `gorm:"not null" json:"current_curriculum_id"`
	CurrentLevelID        *uint  `json:"current_level_id"`
	SuggestedCurriculumID *uint  `json:"suggested_curriculum_id"`
	SuggestedLevelID      *uint  `json:"suggested_level_id"`
	AlertType             string `gorm:"size:48;not null;index" json:"alert_type"`
	Priority              string `gorm:"size:16;not null;default:medium" json:"priority"`
	Message               string `gorm:"type:text" json:"message"`

	Snapshot PerformanceSnapshot `gorm:"embedded;embeddedPrefix:snapshot_" json:"performance_snapshot"`

	Status                  string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	RequiresTeacherApproval bool       `gorm:"not null;default:true" json:"requires_teacher_approval"`
	Decision                string     `gorm:"size:16" json:"decision"`
	TriggeredAt             time.Time  `gorm:"not null" json:"triggered_at"`
	ExpiresAt               *time.Time `json:"expires_at"`
	ReviewedAt              *time.Time `json:"reviewed_at"`
	AppliedAt               *time.Time `json:"applied_at"`
	ReviewedBy              *uint      `json:"reviewed_by"`
	ReviewNotes             string     `gorm:"type:text" json:"review_notes"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the alert reached a final state.
func (a CurriculumAlert) IsTerminal() bool {
	return a.Status == AlertStatusApplied || a.Status == AlertStatusDismissed
}

// IsExpired reports whether the alert lapsed before review.
func (a CurriculumAlert) IsExpired(reference time.Time) bool {
	return a.ExpiresAt != nil && reference.After(*a.ExpiresAt)
}
