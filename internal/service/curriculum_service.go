package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

// planTemplate describes how a named template chunks the mushaf into plans.
type planTemplate struct {
	planType    string
	chunkVerses int
	dailyVerses float64
}

// Named generation templates. Chunk sizes are verses per plan; dailyVerses is
// the pace used to derive expected days.
var planTemplates = map[string]planTemplate{
	"one_year":          {planType: models.PlanTypeLesson, chunkVerses: 17, dailyVerses: 17},
	"fast_memorization": {planType: models.PlanTypeLesson, chunkVerses: 30, dailyVerses: 30},
	"intensive_review":  {planType: models.PlanTypeMajorReview, chunkVerses: 40, dailyVerses: 40},
}

// CurriculumService manages curricula, their levels and template-based plan
// generation.
type CurriculumService interface {
	List(ctx context.Context, filter repository.CurriculumFilter) ([]dto.CurriculumResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.CurriculumResponse, error)
	Create(ctx context.Context, payload dto.CurriculumCreateRequest) (dto.CurriculumResponse, error)
	Delete(ctx context.Context, id uint) error
	GeneratePlans(ctx context.Context, curriculumID uint, payload dto.GeneratePlansRequest) (dto.GeneratePlansResponse, error)
	ListPlans(ctx context.Context, curriculumID uint, planType string) ([]dto.PlanResponse, error)
}

type curriculumService struct {
	curricula repository.CurriculumRepository
	reference quran.Provider
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCurriculumService constructs the curriculum manager.
func NewCurriculumService(
	curricula repository.CurriculumRepository,
	reference quran.Provider,
	validate *validator.Validate,
	logger zerolog.Logger,
) CurriculumService {
	return &curriculumService{
		curricula: curricula,
		reference: reference,
		validator: validate,
		logger:    logger.With().Str("component", "curriculum_service").Logger(),
		now:       time.Now,
	}
}

func (s *curriculumService) List(ctx context.Context, filter repository.CurriculumFilter) ([]dto.CurriculumResponse, int64, error) {
	curricula, total, err := s.curricula.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewCurriculumResponseSlice(curricula), total, nil
}

func (s *curriculumService) Get(ctx context.Context, id uint) (dto.CurriculumResponse, error) {
	curriculum, err := s.curricula.GetWithPlans(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CurriculumResponse{}, ErrCurriculumNotFound
		}
		return dto.CurriculumResponse{}, err
	}

	return dto.NewCurriculumResponse(curriculum), nil
}

func (s *curriculumService) Create(ctx context.Context, payload dto.CurriculumCreateRequest) (dto.CurriculumResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CurriculumResponse{}, err
	}

	curriculum := models.Curriculum{
		Name:         payload.Name,
		Type:         payload.Type,
		Description:  payload.Description,
		DurationDays: payload.DurationDays,
	}
	for _, level := range payload.Levels {
		curriculum.Levels = append(curriculum.Levels, models.CurriculumLevel{
			Order: level.Order,
			Name:  level.Name,
		})
	}

	if err := s.curricula.Create(ctx, &curriculum); err != nil {
		return dto.CurriculumResponse{}, err
	}

	s.logger.Info().Uint("curriculum_id", curriculum.ID).Str("name", curriculum.Name).Msg("curriculum created")

	return dto.NewCurriculumResponse(curriculum), nil
}

func (s *curriculumService) Delete(ctx context.Context, id uint) error {
	if err := s.curricula.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCurriculumNotFound
		}
		return err
	}

	return nil
}

// GeneratePlans chunks the selected surahs into ordered plans according to a
// named template. Surah numbers outside the mushaf are skipped, not fatal.
func (s *curriculumService) GeneratePlans(ctx context.Context, curriculumID uint, payload dto.GeneratePlansRequest) (dto.GeneratePlansResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GeneratePlansResponse{}, err
	}

	template, ok := planTemplates[payload.Template]
	if !ok {
		return dto.GeneratePlansResponse{}, ErrUnknownTemplate
	}

	if _, err := s.curricula.GetByID(ctx, curriculumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GeneratePlansResponse{}, ErrCurriculumNotFound
		}
		return dto.GeneratePlansResponse{}, err
	}

	surahs := payload.SelectedSurahs
	if len(surahs) == 0 {
		surahs = make([]int, 0, quran.TotalSurahs)
		for surah := 1; surah <= quran.TotalSurahs; surah++ {
			surahs = append(surahs, surah)
		}
	}

	existing, err := s.curricula.CountPlans(ctx, curriculumID)
	if err != nil {
		return dto.GeneratePlansResponse{}, err
	}

	orderIndex := int(existing)
	summary := dto.GeneratePlansResponse{CurriculumID: curriculumID, Template: payload.Template}

	var plans []models.CurriculumPlan
	for _, surah := range surahs {
		verseCount := s.reference.VerseCount(surah)
		if verseCount == 0 {
			summary.PlansSkipped++
			continue
		}

		for start := 1; start <= verseCount; start += template.chunkVerses {
			end := start + template.chunkVerses - 1
			if end > verseCount {
				end = verseCount
			}

			if !s.reference.ValidateRange(surah, start, surah, end) {
				summary.PlansSkipped++
				continue
			}

			verses := end - start + 1
			expectedDays := int(math.Ceil(float64(verses) / template.dailyVerses))
			if expectedDays < 1 {
				expectedDays = 1
			}

			plans = append(plans, models.CurriculumPlan{
				CurriculumID: curriculumID,
				PlanType:     template.planType,
				StartSurah:   surah,
				StartVerse:   start,
				EndSurah:     surah,
				EndVerse:     end,
				Content:      s.reference.FormatRange(surah, start, surah, end),
				ExpectedDays: expectedDays,
				OrderIndex:   orderIndex,
			})
			orderIndex++
			summary.TotalVerses += verses
			summary.ExpectedDays += expectedDays
		}
	}

	if err := s.curricula.CreatePlans(ctx, plans); err != nil {
		return dto.GeneratePlansResponse{}, err
	}

	summary.PlansCreated = len(plans)

	s.logger.Info().
		Uint("curriculum_id", curriculumID).
		Str("template", payload.Template).
		Int("plans_created", summary.PlansCreated).
		Int("plans_skipped", summary.PlansSkipped).
		Msg("curriculum plans generated")

	return summary, nil
}

func (s *curriculumService) ListPlans(ctx context.Context, curriculumID uint, planType string) ([]dto.PlanResponse, error) {
	if _, err := s.curricula.GetByID(ctx, curriculumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCurriculumNotFound
		}
		return nil, err
	}

	plans, err := s.curricula.ListPlans(ctx, curriculumID, planType)
	if err != nil {
		return nil, err
	}

	return dto.NewPlanResponseSlice(plans), nil
}
