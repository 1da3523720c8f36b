package dto

import (
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// DecideAlertRequest carries a teacher decision on a pending alert.
type DecideAlertRequest struct {
	Decision           string `json:"decision" validate:"required,oneof=approve reject defer"`
	Notes              string `json:"notes"`
	TargetCurriculumID *uint  `json:"target_curriculum_id"`
	TargetLevelID      *uint  `json:"target_level_id"`
	ReviewerID         uint   `json:"reviewer_id" validate:"required"`
}

// AlertResponse is the serialized representation of a curriculum alert.
type AlertResponse struct {
	ID                    uint                       `json:"id"`
	StudentID             uint                       `json:"student_id"`
	TeacherID             uint                       `json:"teacher_id"`
	CurrentCurriculumID   uint                       `json:"current_curriculum_id"`
	SuggestedCurriculumID *uint                      `json:"suggested_curriculum_id"`
	SuggestedLevelID      *uint                      `json:"suggested_level_id"`
	AlertType             string                     `json:"alert_type"`
	Priority              string                     `json:"priority"`
	Message               string                     `json:"message"`
	Snapshot              models.PerformanceSnapshot `json:"performance_snapshot"`
	Status                string                     `json:"status"`
	Decision              string                     `json:"decision"`
	TriggeredAt           time.Time                  `json:"triggered_at"`
	ExpiresAt             *time.Time                 `json:"expires_at"`
	ReviewedAt            *time.Time                 `json:"reviewed_at"`
	AppliedAt             *time.Time                 `json:"applied_at"`
	ReviewedBy            *uint                      `json:"reviewed_by"`
	ReviewNotes           string                     `json:"review_notes"`
}

// NewAlertResponse converts a model into a DTO.
func NewAlertResponse(model models.CurriculumAlert) AlertResponse {
	return AlertResponse{
		ID:                    model.ID,
		StudentID:             model.StudentID,
		TeacherID:             model.TeacherID,
		CurrentCurriculumID:   model.CurrentCurriculumID,
		SuggestedCurriculumID: model.SuggestedCurriculumID,
		SuggestedLevelID:      model.SuggestedLevelID,
		AlertType:             model.AlertType,
		Priority:              model.Priority,
		Message:               model.Message,
		Snapshot:              model.Snapshot,
		Status:                model.Status,
		Decision:              model.Decision,
		TriggeredAt:           model.TriggeredAt,
		ExpiresAt:             model.ExpiresAt,
		ReviewedAt:            model.ReviewedAt,
		AppliedAt:             model.AppliedAt,
		ReviewedBy:            model.ReviewedBy,
		ReviewNotes:           model.ReviewNotes,
	}
}

// NewAlertResponseSlice converts a slice of models into DTOs.
func NewAlertResponseSlice(alerts []models.CurriculumAlert) []AlertResponse {
	responses := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, NewAlertResponse(alert))
	}
	return responses
}

// AppliedResult reports a successful curriculum transition.
type AppliedResult struct {
	Alert      AlertResponse      `json:"alert"`
	Assignment AssignmentResponse `json:"assignment"`
}
