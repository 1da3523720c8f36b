package models

import "time"

const (
	// RecitationTypeMemorization is a new-material recitation.
	RecitationTypeMemorization = "memorization"
	// RecitationTypeMinorReview covers recently memorized material.
	RecitationTypeMinorReview = "minor_review"
	// RecitationTypeMajorReview covers older memorized material.
	RecitationTypeMajorReview = "major_review"
)

const (
	// SessionStatusOngoing marks a session still being evaluated.
	SessionStatusOngoing = "ongoing"
	// SessionStatusCompleted marks a finalized session.
	SessionStatusCompleted = "completed"
	// SessionStatusIncomplete marks a session abandoned before evaluation.
	SessionStatusIncomplete = "incomplete"
)

// Qualitative ratings derived from the 0-100 grade.
const (
	RatingExcellent  = "ممتاز"
	RatingVeryGood   = "جيد جدا"
	RatingGood       = "جيد"
	RatingAcceptable = "مقبول"
	RatingWeak       = "ضعيف"
)

// RecitationSession records one recitation attempt over a verse range.
// Grades are canonically 0-100. Rows are append-only except for grade and
// status corrections before the session is finalized.
type RecitationSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SessionID       string     `gorm:"size:64;uniqueIndex;not null" json:"session_id"`
	StudentID       uint       `gorm:"not null;index" json:"student_id"`
	TeacherID       uint       `gorm:"not null" json:"teacher_id"`
	CircleID        *uint      `json:"circle_id"`
	CurriculumID    *uint      `gorm:"index" json:"curriculum_id"`
	StartSurah      int        `gorm:"not null" json:"start_surah"`
	StartVerse      int        `gorm:"not null" json:"start_verse"`
	EndSurah        int        `gorm:"not null" json:"end_surah"`
	EndVerse        int        `gorm:"not null" json:"end_verse"`
	RecitationType  string     `gorm:"size:32;not null" json:"recitation_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Grade           *float64   `json:"grade"`
	Rating          string     `gorm:"size:32" json:"rating"`
	Status          string     `gorm:"size:32;not null;default:ongoing" json:"status"`
	Notes           string     `gorm:"type:text" json:"notes"`
	TotalErrors     int        `gorm:"not null;default:0" json:"total_errors"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Errors []RecitationError `gorm:"constraint:OnDelete:CASCADE" json:"errors,omitempty"`
}

// IsCompleted reports whether the session has been finalized.
func (s RecitationSession) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// Recitation error categories.
const (
	ErrorTypePronunciation = "pronunciation"
	ErrorTypeTajweed       = "tajweed"
	ErrorTypeMemorization  = "memorization"
	ErrorTypeFluency       = "fluency"
	ErrorTypePauseStart    = "pause_start"
	ErrorTypeOther         = "other"
)

// Recitation error severities.
const (
	SeverityLight  = "light"
	SeverityMedium = "medium"
	SeveritySevere = "severe"
)

// RecitationError is a single mistake within a session. It belongs to exactly
// one session and is removed with it.
type RecitationError struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	RecitationSessionID uint      `gorm:"not null;index" json:"recitation_session_id"`
	Surah               int       `gorm:"not null" json:"surah"`
	Verse               int       `gorm:"not null" json:"verse"`
	Word                string    `gorm:"size:128" json:"word"`
	ErrorType           string    `gorm:"size:32;not null" json:"error_type"`
	Severity            string    `gorm:"size:16;not null;default:light" json:"severity"`
	IsRepeated          bool      `gorm:"not null;default:false" json:"is_repeated"`
	CreatedAt           time.Time `json:"created_at"`
}
