package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// planInsertBatchSize bounds peak memory during template generation.
const planInsertBatchSize = 100

// CurriculumFilter describes pagination & search options.
type CurriculumFilter struct {
	Search   string
	Type     string
	Page     int
	PageSize int
}

// CurriculumRepository defines persistence operations for curricula, levels
// and plans.
type CurriculumRepository interface {
	List(ctx context.Context, filter CurriculumFilter) ([]models.Curriculum, int64, error)
	GetByID(ctx context.Context, id uint) (models.Curriculum, error)
	GetWithPlans(ctx context.Context, id uint) (models.Curriculum, error)
	Create(ctx context.Context, curriculum *models.Curriculum) error
	Update(ctx context.Context, curriculum *models.Curriculum) error
	Delete(ctx context.Context, id uint) error
	ListLevels(ctx context.Context, curriculumID uint) ([]models.CurriculumLevel, error)
	NextLevel(ctx context.Context, curriculumID uint, afterOrder int) (models.CurriculumLevel, error)
	CreatePlans(ctx context.Context, plans []models.CurriculumPlan) error
	ListPlans(ctx context.Context, curriculumID uint, planType string) ([]models.CurriculumPlan, error)
	CountPlans(ctx context.Context, curriculumID uint) (int64, error)
}

type curriculumRepository struct {
	db *gorm.DB
}

// NewCurriculumRepository instantiates a GORM-backed repository.
func NewCurriculumRepository(db *gorm.DB) CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) List(ctx context.Context, filter CurriculumFilter) ([]models.Curriculum, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Curriculum{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var curricula []models.Curriculum
	if err := query.Order("name ASC").Find(&curricula).Error; err != nil {
		return nil, 0, err
	}

	return curricula, total, nil
}

func (r *curriculumRepository) GetByID(ctx context.Context, id uint) (models.Curriculum, error) {
	var curriculum models.Curriculum
	if err := r.db.WithContext(ctx).Preload("Levels", func(db *gorm.DB) *gorm.DB {
		return db.Order("level_order ASC")
	}).First(&curriculum, id).Error; err != nil {
		return models.Curriculum{}, err
	}

	return curriculum, nil
}

func (r *curriculumRepository) GetWithPlans(ctx context.Context, id uint) (models.Curriculum, error) {
	var curriculum models.Curriculum
	if err := r.db.WithContext(ctx).
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level_order ASC") }).
		Preload("Plans", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		First(&curriculum, id).Error; err != nil {
		return models.Curriculum{}, err
	}

	return curriculum, nil
}

func (r *curriculumRepository) Create(ctx context.Context, curriculum *models.Curriculum) error {
	return r.db.WithContext(ctx).Create(curriculum).Error
}

func (r *curriculumRepository) Update(ctx context.Context, curriculum *models.Curriculum) error {
	return r.db.WithContext(ctx).Save(curriculum).Error
}

func (r *curriculumRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Curriculum{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curriculumRepository) ListLevels(ctx context.Context, curriculumID uint) ([]models.CurriculumLevel, error) {
	var levels []models.CurriculumLevel
	if err := r.db.WithContext(ctx).
		Where("curriculum_id = ?", curriculumID).
		Order("level_order ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}

	return levels, nil
}

func (r *curriculumRepository) NextLevel(ctx context.Context, curriculumID uint, afterOrder int) (models.CurriculumLevel, error) {
	var level models.CurriculumLevel
	if err := r.db.WithContext(ctx).
		Where("curriculum_id = ? AND level_order > ?", curriculumID, afterOrder).
		Order("level_order ASC").
		First(&level).Error; err != nil {
		return models.CurriculumLevel{}, err
	}

	return level, nil
}

func (r *curriculumRepository) CreatePlans(ctx context.Context, plans []models.CurriculumPlan) error {
	if len(plans) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(plans, planInsertBatchSize).Error
}

func (r *curriculumRepository) ListPlans(ctx context.Context, curriculumID uint, planType string) ([]models.CurriculumPlan, error) {
	query := r.db.WithContext(ctx).Where("curriculum_id = ?", curriculumID)
	if planType != "" {
		query = query.Where("plan_type = ?", planType)
	}

	var plans []models.CurriculumPlan
	if err := query.Order("order_index ASC").Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *curriculumRepository) CountPlans(ctx context.Context, curriculumID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CurriculumPlan{}).
		Where("curriculum_id = ?", curriculumID).
		Count(&total).Error

	return total, err
}
