package models

import "time"

const (
	// AssignmentStatusInProgress marks the student's active assignment.
	AssignmentStatusInProgress = "in_progress"
	// AssignmentStatusCompleted marks a finished assignment.
	AssignmentStatusCompleted = "completed"
	// AssignmentStatusSuspended marks a paused assignment.
	AssignmentStatusSuspended = "suspended"
	// AssignmentStatusCancelled marks an abandoned assignment.
	AssignmentStatusCancelled = "cancelled"
)

// TransitionSnapshot preserves the assignment state that was replaced by a
// curriculum transition. It is embedded rather than serialized so the apply
// path stays type-safe.
type TransitionSnapshot struct {
	CurriculumID   uint       `json:"curriculum_id"`
	LevelID        *uint      `json:"level_id"`
	CurrentPage    int        `json:"current_page"`
	CurrentSurah   int        `json:"current_surah"`
	CurrentAyah    int        `json:"current_ayah"`
	CompletionPct  float64    `json:"completion_pct"`
	TransitionedAt *time.Time `json:"transitioned_at"`
}

// StudentCurriculum is a student's assignment to a curriculum, including the
// daily paging configuration and the student's current position. At most one
// active row exists per (student, curriculum) pair.
type StudentCurriculum struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	StudentID      uint       `gorm:"not null;index" json:"student_id"`
	CurriculumID   uint       `gorm:"not null;index" json:"curriculum_id"`
	LevelID        *uint      `json:"level_id"`
	TeacherID      uint       `gorm:"not null" json:"teacher_id"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	Status         string     `gorm:"size:32;not null;default:in_progress" json:"status"`
	CompletionPct  float64    `gorm:"not null;default:0" json:"completion_percentage"`

	// Daily paging configuration, in mushaf pages per day.
	MemorizationPages float64 `gorm:"not null;default:1" json:"memorization_pages"`
	MinorReviewPages  float64 `gorm:"not null;default:2" json:"minor_review_pages"`
	MajorReviewPages  float64 `gorm:"not null;default:4" json:"major_review_pages"`

	// Current position in the mushaf.
	CurrentPage  int `gorm:"not null;default:1" json:"current_page"`
	CurrentSurah int `gorm:"not null;default:1" json:"current_surah"`
	CurrentAyah  int `gorm:"not null;default:1" json:"current_ayah"`

	ConsecutiveDays int        `gorm:"not null;default:0" json:"consecutive_days"`
	LastAdvancedAt  *time.Time `json:"last_advanced_at"`

	PreviousSnapshot TransitionSnapshot `gorm:"embedded;embeddedPrefix:prev_" json:"previous_snapshot"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Curriculum Curriculum `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"curriculum,omitempty"`
}

// IsActive reports whether the assignment is being worked on.
func (s StudentCurriculum) IsActive() bool {
	return s.Status == AssignmentStatusInProgress
}

const (
	// ProgressStatusInProgress marks a plan the student is working through.
	ProgressStatusInProgress = "in_progress"
	// ProgressStatusCompleted marks a finished plan.
	ProgressStatusCompleted = "completed"
)

// StudentCurriculumProgress tracks one plan within one assignment. Rows are
// created lazily the first time a plan is touched; at most one row exists per
// (assignment, plan).
type StudentCurriculumProgress struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	StudentCurriculumID uint       `gorm:"not null;uniqueIndex:idx_assignment_plan" json:"student_curriculum_id"`
	CurriculumPlanID    uint       `gorm:"not null;uniqueIndex:idx_assignment_plan" json:"curriculum_plan_id"`
	StartDate           time.Time  `gorm:"not null" json:"start_date"`
	CompletionDate      *time.Time `json:"completion_date"`
	Status              string     `gorm:"size:32;not null;default:in_progress" json:"status"`
	CompletionPct       float64    `gorm:"not null;default:0" json:"completion_percentage"`
	TeacherNotes        string     `gorm:"type:text" json:"teacher_notes"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
