package models

import "time"

const (
	// CurriculumTypeTeacherLed marks curricula paced by a teacher.
	CurriculumTypeTeacherLed = "teacher_led"
	// CurriculumTypeStudentLed marks self-paced curricula.
	CurriculumTypeStudentLed = "student_led"
)

const (
	// PlanTypeLesson is new memorization material.
	PlanTypeLesson = "lesson"
	// PlanTypeMinorReview covers recently memorized material.
	PlanTypeMinorReview = "minor_review"
	// PlanTypeMajorReview covers older memorized material.
	PlanTypeMajorReview = "major_review"
)

// Curriculum groups ordered levels and their plans.
type Curriculum struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Type         string            `gorm:"size:32;not null;default:teacher_led" json:"type"`
	Description  string            `gorm:"type:text" json:"description"`
	DurationDays int               `json:"duration_days"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Levels       []CurriculumLevel `gorm:"constraint:OnDelete:CASCADE" json:"levels,omitempty"`
	Plans        []CurriculumPlan  `gorm:"constraint:OnDelete:CASCADE" json:"plans,omitempty"`
}

// CurriculumLevel is one rung of a curriculum. Order is the advancement key
// and is unique within a curriculum.
type CurriculumLevel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CurriculumID uint      `gorm:"not null;uniqueIndex:idx_curriculum_level_order" json:"curriculum_id"`
	Order        int       `gorm:"column:level_order;not null;uniqueIndex:idx_curriculum_level_order" json:"order"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CurriculumPlan is a single lesson or review unit with a verse range. A plan
// either stays within one surah (StartSurah == EndSurah) or spans several.
type CurriculumPlan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CurriculumID uint      `gorm:"not null;index" json:"curriculum_id"`
	LevelID      *uint     `gorm:"index" json:"level_id"`
	PlanType     string    `gorm:"size:32;not null" json:"plan_type"`
	StartSurah   int       `gorm:"not null" json:"start_surah"`
	StartVerse   int       `gorm:"not null" json:"start_verse"`
	EndSurah     int       `gorm:"not null" json:"end_surah"`
	EndVerse     int       `gorm:"not null" json:"end_verse"`
	Content      string    `gorm:"size:512" json:"content"`
	ExpectedDays int       `gorm:"not null;default:1" json:"expected_days"`
	OrderIndex   int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsSingleSurah reports whether the plan stays within one surah.
func (p CurriculumPlan) IsSingleSurah() bool {
	return p.StartSurah == p.EndSurah
}
