package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

// AssignmentService enrolls students into curricula and exposes their plan
// progress. A student holds at most one active assignment.
type AssignmentService interface {
	AssignStudent(ctx context.Context, payload dto.AssignStudentRequest) (dto.AssignmentResponse, error)
	GetActive(ctx context.Context, studentID uint) (dto.AssignmentResponse, error)
	Suspend(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error)
	Resume(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error)
	ListProgress(ctx context.Context, assignmentID uint) ([]dto.ProgressResponse, error)
}

type assignmentService struct {
	assignments repository.StudentCurriculumRepository
	progress    repository.ProgressRepository
	curricula   repository.CurriculumRepository
	students    repository.StudentRepository
	reference   quran.Provider
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment manager.
func NewAssignmentService(
	assignments repository.StudentCurriculumRepository,
	progress repository.ProgressRepository,
	curricula repository.CurriculumRepository,
	students repository.StudentRepository,
	reference quran.Provider,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		progress:    progress,
		curricula:   curricula,
		students:    students,
		reference:   reference,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) AssignStudent(ctx context.Context, payload dto.AssignStudentRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrStudentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.curricula.GetByID(ctx, payload.CurriculumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCurriculumNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.assignments.GetActiveByStudent(ctx, payload.StudentID); err == nil {
		return dto.AssignmentResponse{}, ErrDuplicateAssignment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssignmentResponse{}, err
	}

	startSurah := payload.StartSurah
	if startSurah == 0 {
		startSurah = 1
	}
	startAyah := payload.StartAyah
	if startAyah == 0 {
		startAyah = 1
	}
	if !s.reference.ValidateRange(startSurah, startAyah, startSurah, startAyah) {
		return dto.AssignmentResponse{}, ErrInvalidVerseRange
	}

	assignment := models.StudentCurriculum{
		StudentID:         payload.StudentID,
		CurriculumID:      payload.CurriculumID,
		LevelID:           payload.LevelID,
		TeacherID:         payload.TeacherID,
		StartDate:         s.now(),
		Status:            models.AssignmentStatusInProgress,
		MemorizationPages: defaultPages(payload.MemorizationPages, 1),
		MinorReviewPages:  defaultPages(payload.MinorReviewPages, 2),
		MajorReviewPages:  defaultPages(payload.MajorReviewPages, 4),
		CurrentPage:       1,
		CurrentSurah:      startSurah,
		CurrentAyah:       startAyah,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", assignment.StudentID).
		Uint("curriculum_id", assignment.CurriculumID).
		Msg("student assigned to curriculum")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) GetActive(ctx context.Context, studentID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Suspend(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error) {
	return s.transition(ctx, assignmentID, models.AssignmentStatusInProgress, models.AssignmentStatusSuspended)
}

func (s *assignmentService) Resume(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error) {
	return s.transition(ctx, assignmentID, models.AssignmentStatusSuspended, models.AssignmentStatusInProgress)
}

// transition flips the assignment status with a compare-and-set so two
// concurrent requests cannot both win.
func (s *assignmentService) transition(ctx context.Context, assignmentID uint, from, to string) (dto.AssignmentResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	changed, err := s.assignments.UpdateStatus(ctx, assignmentID, from, to)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !changed {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListProgress(ctx context.Context, assignmentID uint) ([]dto.ProgressResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	rows, err := s.progress.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewProgressResponseSlice(rows), nil
}

func defaultPages(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}
