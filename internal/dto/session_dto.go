package dto

import (
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// Grade scales accepted at the recording boundary. Everything is normalized
// to 0-100 before persistence.
const (
	GradeScalePercent = "percent"
	GradeScaleTen     = "ten"
)

// RecitationErrorInput describes one mistake observed during a session.
type RecitationErrorInput struct {
	Surah      int    `json:"surah" validate:"required,min=1,max=114"`
	Verse      int    `json:"verse" validate:"required,min=1"`
	Word       string `json:"word" validate:"max=128"`
	ErrorType  string `json:"error_type" validate:"required,oneof=pronunciation tajweed memorization fluency pause_start other"`
	Severity   string `json:"severity" validate:"omitempty,oneof=light medium severe"`
	IsRepeated bool   `json:"is_repeated"`
}

// RecordSessionRequest is the payload for recording a recitation attempt.
type RecordSessionRequest struct {
	StudentID       uint                   `json:"student_id" validate:"required"`
	TeacherID       uint                   `json:"teacher_id" validate:"required"`
	CircleID        *uint                  `json:"circle_id"`
	CurriculumID    *uint                  `json:"curriculum_id"`
	StartSurah      int                    `json:"start_surah" validate:"required,min=1,max=114"`
	StartVerse      int                    `json:"start_verse" validate:"required,min=1"`
	EndSurah        int                    `json:"end_surah" validate:"required,min=1,max=114"`
	EndVerse        int                    `json:"end_verse" validate:"required,min=1"`
	RecitationType  string                 `json:"recitation_type" validate:"required,oneof=memorization minor_review major_review"`
	DurationMinutes int                    `json:"duration_minutes" validate:"omitempty,min=0"`
	Grade           *float64               `json:"grade" validate:"omitempty,min=0"`
	GradeScale      string                 `json:"grade_scale" validate:"omitempty,oneof=percent ten"`
	Notes           string                 `json:"notes"`
	Errors          []RecitationErrorInput `json:"errors" validate:"dive"`
	Finalize        bool                   `json:"finalize"`
}

// FinalizeSessionRequest completes an ongoing session.
type FinalizeSessionRequest struct {
	Grade      *float64 `json:"grade" validate:"omitempty,min=0"`
	GradeScale string   `json:"grade_scale" validate:"omitempty,oneof=percent ten"`
	Notes      string   `json:"notes"`
}

// SessionResponse is the serialized representation of a recitation session.
type SessionResponse struct {
	ID              uint       `json:"id"`
	SessionID       string     `json:"session_id"`
	StudentID       uint       `json:"student_id"`
	TeacherID       uint       `json:"teacher_id"`
	CurriculumID    *uint      `json:"curriculum_id"`
	StartSurah      int        `json:"start_surah"`
	StartVerse      int        `json:"start_verse"`
	EndSurah        int        `json:"end_surah"`
	EndVerse        int        `json:"end_verse"`
	Content         string     `json:"content"`
	RecitationType  string     `json:"recitation_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Grade           *float64   `json:"grade"`
	Rating          string     `json:"rating"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
	TotalErrors     int        `json:"total_errors"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewSessionResponse converts a model into a DTO. The formatted content is
// produced by the caller because it needs the reference table.
func NewSessionResponse(model models.RecitationSession, content string) SessionResponse {
	return SessionResponse{
		ID:              model.ID,
		SessionID:       model.SessionID,
		StudentID:       model.StudentID,
		TeacherID:       model.TeacherID,
		CurriculumID:    model.CurriculumID,
		StartSurah:      model.StartSurah,
		StartVerse:      model.StartVerse,
		EndSurah:        model.EndSurah,
		EndVerse:        model.EndVerse,
		Content:         content,
		RecitationType:  model.RecitationType,
		DurationMinutes: model.DurationMinutes,
		Grade:           model.Grade,
		Rating:          model.Rating,
		Status:          model.Status,
		Notes:           model.Notes,
		TotalErrors:     model.TotalErrors,
		CompletedAt:     model.CompletedAt,
		CreatedAt:       model.CreatedAt,
	}
}
