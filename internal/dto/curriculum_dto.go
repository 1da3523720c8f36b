package dto

import (
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// CurriculumLevelInput describes one level when creating a curriculum.
type CurriculumLevelInput struct {
	Order int    `json:"order" validate:"required,min=1"`
	Name  string `json:"name" validate:"required,min=2"`
}

// CurriculumCreateRequest is the payload for creating a curriculum with its
// ordered levels.
type CurriculumCreateRequest struct {
	Name         string                 `json:"name" validate:"required,min=3"`
	Type         string                 `json:"type" validate:"required,oneof=teacher_led student_led"`
	Description  string                 `json:"description"`
	DurationDays int                    `json:"duration_days" validate:"omitempty,min=1"`
	Levels       []CurriculumLevelInput `json:"levels" validate:"dive"`
}

// GeneratePlansRequest asks for template-based plan generation.
type GeneratePlansRequest struct {
	Template       string `json:"template" validate:"required"`
	StartDate      string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	SelectedSurahs []int  `json:"selected_surahs" validate:"omitempty,dive,min=1,max=114"`
}

// GeneratePlansResponse summarizes a template run.
type GeneratePlansResponse struct {
	CurriculumID uint   `json:"curriculum_id"`
	Template     string `json:"template"`
	PlansCreated int    `json:"plans_created"`
	PlansSkipped int    `json:"plans_skipped"`
	ExpectedDays int    `json:"expected_days"`
	TotalVerses  int    `json:"total_verses"`
}

// PlanResponse is the serialized representation of a curriculum plan.
type PlanResponse struct {
	ID           uint   `json:"id"`
	CurriculumID uint   `json:"curriculum_id"`
	LevelID      *uint  `json:"level_id"`
	PlanType     string `json:"plan_type"`
	StartSurah   int    `json:"start_surah"`
	StartVerse   int    `json:"start_verse"`
	EndSurah     int    `json:"end_surah"`
	EndVerse     int    `json:"end_verse"`
	Content      string `json:"content"`
	ExpectedDays int    `json:"expected_days"`
	OrderIndex   int    `json:"order_index"`
}

// NewPlanResponse converts a model into a DTO.
func NewPlanResponse(model models.CurriculumPlan) PlanResponse {
	return PlanResponse{
		ID:           model.ID,
		CurriculumID: model.CurriculumID,
		LevelID:      model.LevelID,
		PlanType:     model.PlanType,
		StartSurah:   model.StartSurah,
		StartVerse:   model.StartVerse,
		EndSurah:     model.EndSurah,
		EndVerse:     model.EndVerse,
		Content:      model.Content,
		ExpectedDays: model.ExpectedDays,
		OrderIndex:   model.OrderIndex,
	}
}

// NewPlanResponseSlice converts a slice of models into DTOs.
func NewPlanResponseSlice(plans []models.CurriculumPlan) []PlanResponse {
	responses := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, NewPlanResponse(plan))
	}
	return responses
}

// CurriculumLevelResponse is the serialized representation of a level.
type CurriculumLevelResponse struct {
	ID    uint   `json:"id"`
	Order int    `json:"order"`
	Name  string `json:"name"`
}

// CurriculumResponse is the serialized representation of a curriculum.
type CurriculumResponse struct {
	ID           uint                      `json:"id"`
	Name         string                    `json:"name"`
	Type         string                    `json:"type"`
	Description  string                    `json:"description"`
	DurationDays int                       `json:"duration_days"`
	Levels       []CurriculumLevelResponse `json:"levels,omitempty"`
	Plans        []PlanResponse            `json:"plans,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// NewCurriculumResponse converts a model into a DTO.
func NewCurriculumResponse(model models.Curriculum) CurriculumResponse {
	levels := make([]CurriculumLevelResponse, 0, len(model.Levels))
	for _, level := range model.Levels {
		levels = append(levels, CurriculumLevelResponse{ID: level.ID, Order: level.Order, Name: level.Name})
	}

	return CurriculumResponse{
		ID:           model.ID,
		Name:         model.Name,
		Type:         model.Type,
		Description:  model.Description,
		DurationDays: model.DurationDays,
		Levels:       levels,
		Plans:        NewPlanResponseSlice(model.Plans),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewCurriculumResponseSlice converts a slice of models into DTOs.
func NewCurriculumResponseSlice(curricula []models.Curriculum) []CurriculumResponse {
	responses := make([]CurriculumResponse, 0, len(curricula))
	for _, curriculum := range curricula {
		responses = append(responses, NewCurriculumResponse(curriculum))
	}
	return responses
}
