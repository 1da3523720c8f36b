package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// SessionRepository defines persistence operations for recitation sessions
// and their error rows.
type SessionRepository interface {
	Create(ctx context.Context, session *models.RecitationSession) error
	Update(ctx context.Context, session *models.RecitationSession) error
	GetBySessionID(ctx context.Context, sessionID string) (models.RecitationSession, error)
	ListSince(ctx context.Context, studentID uint, since time.Time) ([]models.RecitationSession, error)
	LastCompleted(ctx context.Context, studentID, curriculumID uint) (models.RecitationSession, error)
	Delete(ctx context.Context, id uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists the session together with its child error rows.
func (r *sessionRepository) Create(ctx context.Context, session *models.RecitationSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Update(ctx context.Context, session *models.RecitationSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) GetBySessionID(ctx context.Context, sessionID string) (models.RecitationSession, error) {
	var session models.RecitationSession
	if err := r.db.WithContext(ctx).
		Preload("Errors").
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return models.RecitationSession{}, err
	}

	return session, nil
}

func (r *sessionRepository) ListSince(ctx context.Context, studentID uint, since time.Time) ([]models.RecitationSession, error) {
	var sessions []models.RecitationSession
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Order("created_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) LastCompleted(ctx context.Context, studentID, curriculumID uint) (models.RecitationSession, error) {
	var session models.RecitationSession
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND curriculum_id = ? AND status = ?",
			studentID, curriculumID, models.SessionStatusCompleted).
		Order("completed_at DESC").
		First(&session).Error; err != nil {
		return models.RecitationSession{}, err
	}

	return session, nil
}

// Delete removes the session and, via the FK constraint, its error rows.
func (r *sessionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Select("Errors").Delete(&models.RecitationSession{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
