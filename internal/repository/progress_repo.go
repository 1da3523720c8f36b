package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// ProgressRepository defines persistence operations for per-plan progress
// rows.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, assignmentID, planID uint, startDate time.Time) (models.StudentCurriculumProgress, error)
	Update(ctx context.Context, progress *models.StudentCurriculumProgress) error
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentCurriculumProgress, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (total, completed int64, err error)
	SetCompletionPct(ctx context.Context, assignmentID uint, pct float64) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates a GORM-backed repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetOrCreate(ctx context.Context, assignmentID, planID uint, startDate time.Time) (models.StudentCurriculumProgress, error) {
	var progress models.StudentCurriculumProgress
	err := r.db.WithContext(ctx).
		Where("student_curriculum_id = ? AND curriculum_plan_id = ?", assignmentID, planID).
		First(&progress).Error
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StudentCurriculumProgress{}, err
	}

	progress = models.StudentCurriculumProgress{
		StudentCurriculumID: assignmentID,
		CurriculumPlanID:    planID,
		StartDate:           startDate,
		Status:              models.ProgressStatusInProgress,
	}
	if err := r.db.WithContext(ctx).Create(&progress).Error; err != nil {
		return models.StudentCurriculumProgress{}, err
	}

	return progress, nil
}

func (r *progressRepository) Update(ctx context.Context, progress *models.StudentCurriculumProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *progressRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentCurriculumProgress, error) {
	var rows []models.StudentCurriculumProgress
	if err := r.db.WithContext(ctx).
		Where("student_curriculum_id = ?", assignmentID).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// SetCompletionPct rewrites the derived percentage on every progress row of
// the assignment in a single statement, keeping sibling rows in step.
func (r *progressRepository) SetCompletionPct(ctx context.Context, assignmentID uint, pct float64) error {
	return r.db.WithContext(ctx).
		Model(&models.StudentCurriculumProgress{}).
		Where("student_curriculum_id = ?", assignmentID).
		Update("completion_pct", pct).Error
}

func (r *progressRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentCurriculumProgress{}).
		Where("student_curriculum_id = ?", assignmentID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentCurriculumProgress{}).
		Where("student_curriculum_id = ? AND status = ?", assignmentID, models.ProgressStatusCompleted).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}
