package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// StudentCurriculumRepository defines persistence operations for student
// curriculum assignments.
type StudentCurriculumRepository interface {
	GetByID(ctx context.Context, id uint) (models.StudentCurriculum, error)
	GetActiveByStudent(ctx context.Context, studentID uint) (models.StudentCurriculum, error)
	ListActive(ctx context.Context) ([]models.StudentCurriculum, error)
	HasActive(ctx context.Context, studentID, curriculumID uint) (bool, error)
	Create(ctx context.Context, assignment *models.StudentCurriculum) error
	Update(ctx context.Context, assignment *models.StudentCurriculum) error
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
}

type studentCurriculumRepository struct {
	db *gorm.DB
}

// NewStudentCurriculumRepository instantiates a GORM-backed repository.
func NewStudentCurriculumRepository(db *gorm.DB) StudentCurriculumRepository {
	return &studentCurriculumRepository{db: db}
}

func (r *studentCurriculumRepository) GetByID(ctx context.Context, id uint) (models.StudentCurriculum, error) {
	var assignment models.StudentCurriculum
	if err := r.db.WithContext(ctx).Preload("Curriculum").First(&assignment, id).Error; err != nil {
		return models.StudentCurriculum{}, err
	}

	return assignment, nil
}

func (r *studentCurriculumRepository) GetActiveByStudent(ctx context.Context, studentID uint) (models.StudentCurriculum, error) {
	var assignment models.StudentCurriculum
	if err := r.db.WithContext(ctx).
		Preload("Curriculum").
		Where("student_id = ? AND status = ?", studentID, models.AssignmentStatusInProgress).
		Order("start_date DESC").
		First(&assignment).Error; err != nil {
		return models.StudentCurriculum{}, err
	}

	return assignment, nil
}

func (r *studentCurriculumRepository) ListActive(ctx context.Context) ([]models.StudentCurriculum, error) {
	var assignments []models.StudentCurriculum
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.AssignmentStatusInProgress).
		Order("student_id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *studentCurriculumRepository) HasActive(ctx context.Context, studentID, curriculumID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentCurriculum{}).
		Where("student_id = ? AND curriculum_id = ? AND status = ?",
			studentID, curriculumID, models.AssignmentStatusInProgress).
		Count(&total).Error

	return total > 0, err
}

func (r *studentCurriculumRepository) Create(ctx context.Context, assignment *models.StudentCurriculum) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *studentCurriculumRepository) Update(ctx context.Context, assignment *models.StudentCurriculum) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// UpdateStatus performs a compare-and-set on the assignment status. It
// reports false when the row was not in the expected state, which makes
// concurrent transitions race-safe without table locks.
func (r *studentCurriculumRepository) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StudentCurriculum{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
