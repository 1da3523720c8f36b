package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// AlertFilter narrows pending-alert queries.
type AlertFilter struct {
	StudentID *uint
	TeacherID *uint
	AlertType string
	Priority  string
}

// AlertRepository defines persistence operations for curriculum alerts,
// including the transactional curriculum transition.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.CurriculumAlert) error
	GetByID(ctx context.Context, id uint) (models.CurriculumAlert, error)
	Update(ctx context.Context, alert *models.CurriculumAlert) error
	MarkReviewed(ctx context.Context, alert *models.CurriculumAlert) error
	HasRecentPending(ctx context.Context, studentID uint, alertType string, since time.Time) (bool, error)
	ListPending(ctx context.Context, filter AlertFilter, reference time.Time) ([]models.CurriculumAlert, error)
	ApplyTransition(ctx context.Context, alertID uint, next models.StudentCurriculum, reference time.Time) (models.StudentCurriculum, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository instantiates a GORM-backed repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.CurriculumAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) GetByID(ctx context.Context, id uint) (models.CurriculumAlert, error) {
	var alert models.CurriculumAlert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		return models.CurriculumAlert{}, err
	}

	return alert, nil
}

func (r *alertRepository) Update(ctx context.Context, alert *models.CurriculumAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// MarkReviewed records the reviewer's decision with a compare-and-set on the
// pending status, so only one reviewer can move the alert out of pending.
// RowsAffected of zero surfaces as ErrRecordNotFound.
func (r *alertRepository) MarkReviewed(ctx context.Context, alert *models.CurriculumAlert) error {
	result := r.db.WithContext(ctx).
		Model(&models.CurriculumAlert{}).
		Where("id = ? AND status = ?", alert.ID, models.AlertStatusPending).
		Updates(map[string]interface{}{
			"status":       models.AlertStatusReviewed,
			"decision":     alert.Decision,
			"reviewed_at":  alert.ReviewedAt,
			"reviewed_by":  alert.ReviewedBy,
			"review_notes": alert.ReviewNotes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *alertRepository) HasRecentPending(ctx context.Context, studentID uint, alertType string, since time.Time) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CurriculumAlert{}).
		Where("student_id = ? AND alert_type = ? AND status = ? AND triggered_at >= ?",
			studentID, alertType, models.AlertStatusPending, since).
		Count(&total).Error

	return total > 0, err
}

// ListPending returns pending alerts that have not lapsed. Expired alerts
// stay queryable by id for audit but are excluded here.
func (r *alertRepository) ListPending(ctx context.Context, filter AlertFilter, reference time.Time) ([]models.CurriculumAlert, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", models.AlertStatusPending).
		Where("expires_at IS NULL OR expires_at > ?", reference)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.AlertType != "" {
		query = query.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var alerts []models.CurriculumAlert
	if err := query.Order("triggered_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

// ApplyTransition atomically marks the alert applied and replaces the
// student's active assignment with `next`, archiving the old position into
// the snapshot columns. The alert status update is a compare-and-set: when a
// concurrent apply already won, the transaction rolls back and
// gorm.ErrRecordNotFound is returned so the caller can surface a conflict.
func (r *alertRepository) ApplyTransition(ctx context.Context, alertID uint, next models.StudentCurriculum, reference time.Time) (models.StudentCurriculum, error) {
	var updated models.StudentCurriculum

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CurriculumAlert{}).
			Where("id = ? AND status = ?", alertID, models.AlertStatusReviewed).
			Updates(map[string]interface{}{
				"status":     models.AlertStatusApplied,
				"applied_at": reference,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var current models.StudentCurriculum
		if err := tx.Where("student_id = ? AND status = ?", next.StudentID, models.AssignmentStatusInProgress).
			First(&current).Error; err != nil {
			return err
		}

		current.PreviousSnapshot = models.TransitionSnapshot{
			CurriculumID:   current.CurriculumID,
			LevelID:        current.LevelID,
			CurrentPage:    current.CurrentPage,
			CurrentSurah:   current.CurrentSurah,
			CurrentAyah:    current.CurrentAyah,
			CompletionPct:  current.CompletionPct,
			TransitionedAt: &reference,
		}
		current.CurriculumID = next.CurriculumID
		current.LevelID = next.LevelID
		current.StartDate = reference
		current.CompletionDate = nil
		current.CompletionPct = 0
		current.CurrentPage = next.CurrentPage
		current.CurrentSurah = next.CurrentSurah
		current.CurrentAyah = next.CurrentAyah
		current.ConsecutiveDays = 0
		current.LastAdvancedAt = nil

		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return models.StudentCurriculum{}, err
	}

	return updated, nil
}
