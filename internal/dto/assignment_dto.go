package dto

import (
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// AssignStudentRequest enrolls a student into a curriculum.
type AssignStudentRequest struct {
	StudentID         uint    `json:"student_id" validate:"required"`
	CurriculumID      uint    `json:"curriculum_id" validate:"required"`
	LevelID           *uint   `json:"level_id"`
	TeacherID         uint    `json:"teacher_id" validate:"required"`
	MemorizationPages float64 `json:"memorization_pages" validate:"omitempty,gt=0"`
	MinorReviewPages  float64 `json:"minor_review_pages" validate:"omitempty,gt=0"`
	MajorReviewPages  float64 `json:"major_review_pages" validate:"omitempty,gt=0"`
	StartSurah        int     `json:"start_surah" validate:"omitempty,min=1,max=114"`
	StartAyah         int     `json:"start_ayah" validate:"omitempty,min=1"`
}

// AssignmentResponse is the serialized representation of a student's
// curriculum assignment.
type AssignmentResponse struct {
	ID                uint       `json:"id"`
	StudentID         uint       `json:"student_id"`
	CurriculumID      uint       `json:"curriculum_id"`
	LevelID           *uint      `json:"level_id"`
	TeacherID         uint       `json:"teacher_id"`
	StartDate         time.Time  `json:"start_date"`
	CompletionDate    *time.Time `json:"completion_date"`
	Status            string     `json:"status"`
	CompletionPct     float64    `json:"completion_percentage"`
	MemorizationPages float64    `json:"memorization_pages"`
	MinorReviewPages  float64    `json:"minor_review_pages"`
	MajorReviewPages  float64    `json:"major_review_pages"`
	CurrentPage       int        `json:"current_page"`
	CurrentSurah      int        `json:"current_surah"`
	CurrentAyah       int        `json:"current_ayah"`
	ConsecutiveDays   int        `json:"consecutive_days"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.StudentCurriculum) AssignmentResponse {
	return AssignmentResponse{
		ID:                model.ID,
		StudentID:         model.StudentID,
		CurriculumID:      model.CurriculumID,
		LevelID:           model.LevelID,
		TeacherID:         model.TeacherID,
		StartDate:         model.StartDate,
		CompletionDate:    model.CompletionDate,
		Status:            model.Status,
		CompletionPct:     model.CompletionPct,
		MemorizationPages: model.MemorizationPages,
		MinorReviewPages:  model.MinorReviewPages,
		MajorReviewPages:  model.MajorReviewPages,
		CurrentPage:       model.CurrentPage,
		CurrentSurah:      model.CurrentSurah,
		CurrentAyah:       model.CurrentAyah,
		ConsecutiveDays:   model.ConsecutiveDays,
	}
}

// ProgressResponse is the serialized representation of one plan's progress.
type ProgressResponse struct {
	ID                  uint       `json:"id"`
	StudentCurriculumID uint       `json:"student_curriculum_id"`
	CurriculumPlanID    uint       `json:"curriculum_plan_id"`
	StartDate           time.Time  `json:"start_date"`
	CompletionDate      *time.Time `json:"completion_date"`
	Status              string     `json:"status"`
	CompletionPct       float64    `json:"completion_percentage"`
	TeacherNotes        string     `json:"teacher_notes"`
}

// NewProgressResponseSlice converts a slice of models into DTOs.
func NewProgressResponseSlice(rows []models.StudentCurriculumProgress) []ProgressResponse {
	responses := make([]ProgressResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, ProgressResponse{
			ID:                  row.ID,
			StudentCurriculumID: row.StudentCurriculumID,
			CurriculumPlanID:    row.CurriculumPlanID,
			StartDate:           row.StartDate,
			CompletionDate:      row.CompletionDate,
			Status:              row.Status,
			CompletionPct:       row.CompletionPct,
			TeacherNotes:        row.TeacherNotes,
		})
	}
	return responses
}
