package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/observability"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
)

// EvaluationService runs the analyze -> score -> alert pipeline for one
// student or for every active assignment.
type EvaluationService interface {
	EvaluateStudent(ctx context.Context, studentID uint) (dto.EvaluationResponse, error)
	EvaluateAllActiveStudents(ctx context.Context) (dto.SweepSummary, error)
}

type evaluationService struct {
	assignments repository.StudentCurriculumRepository
	sessions    repository.SessionRepository
	analyzer    PerformanceAnalyzer
	scorer      ReadinessScorer
	alerts      AlertService
	cfg         config.EngineConfig
	workers     int
	logger      zerolog.Logger
	now         func() time.Time

	// Per-student locks so a manual evaluation and the sweep cannot
	// interleave alert creation for the same student.
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewEvaluationService constructs the evaluation pipeline.
func NewEvaluationService(
	assignments repository.StudentCurriculumRepository,
	sessions repository.SessionRepository,
	analyzer PerformanceAnalyzer,
	scorer ReadinessScorer,
	alerts AlertService,
	cfg config.EngineConfig,
	sweepWorkers int,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		assignments: assignments,
		sessions:    sessions,
		analyzer:    analyzer,
		scorer:      scorer,
		alerts:      alerts,
		cfg:         cfg,
		workers:     sweepWorkers,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		now:         time.Now,
		locks:       map[uint]*sync.Mutex{},
	}
}

func (s *evaluationService) studentLock(studentID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[studentID] = lock
	}
	return lock
}

// EvaluateStudent analyzes the student's recent sessions, scores readiness
// and raises any resulting alerts.
func (s *evaluationService) EvaluateStudent(ctx context.Context, studentID uint) (dto.EvaluationResponse, error) {
	assignment, err := s.assignments.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrAssignmentNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	lock := s.studentLock(studentID)
	lock.Lock()
	defer lock.Unlock()

	tracer := otel.Tracer("github.com/noah-isme/tahfiz-go-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.student")
	span.SetAttributes(attribute.Int64("student.id", int64(studentID)))
	defer span.End()

	now := s.now()
	window := now.AddDate(0, 0, -s.cfg.AnalysisWindowDays)

	sessions, err := s.sessions.ListSince(ctx, studentID, window)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	analysis := s.analyzer.Analyze(sessions, now)
	readiness := s.scorer.Score(ReadinessInput{
		Assignment: assignment,
		Analysis:   analysis,
		Reference:  now,
	})

	observability.Evaluations().WithLabelValues(readiness.Tier).Inc()

	created, err := s.alerts.RaiseFromEvaluation(ctx, assignment, analysis, readiness)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	s.logger.Debug().
		Uint("student_id", studentID).
		Float64("readiness_score", readiness.Score).
		Str("tier", readiness.Tier).
		Int("alerts_created", len(created)).
		Msg("student evaluated")

	response := dto.EvaluationResponse{
		StudentID: studentID,
		Analysis:  analysis,
		Readiness: readiness,
		Alerts:    make([]dto.AlertResponse, 0, len(created)),
	}
	for _, alert := range created {
		response.Alerts = append(response.Alerts, dto.NewAlertResponse(alert))
	}

	return response, nil
}

// EvaluateAllActiveStudents sweeps every active assignment through the
// pipeline with a bounded worker pool. A failing student is recorded and the
// sweep continues.
func (s *evaluationService) EvaluateAllActiveStudents(ctx context.Context) (dto.SweepSummary, error) {
	tracer := otel.Tracer("github.com/noah-isme/tahfiz-go-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.sweep")
	defer span.End()

	assignments, err := s.assignments.ListActive(ctx)
	if err != nil {
		return dto.SweepSummary{}, err
	}
	span.SetAttributes(attribute.Int("sweep.assignments", len(assignments)))

	workers := s.workers
	if workers <= 0 {
		workers = 1
	}

	type sweepResult struct {
		studentID uint
		alerts    int
		err       error
	}

	jobs := make(chan uint)
	results := make(chan sweepResult, len(assignments))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for studentID := range jobs {
				response, err := s.EvaluateStudent(ctx, studentID)
				results <- sweepResult{studentID: studentID, alerts: len(response.Alerts), err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, assignment := range assignments {
			select {
			case jobs <- assignment.StudentID:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	summary := dto.SweepSummary{}
	for result := range results {
		if result.err != nil {
			observability.SweepFailures().Inc()
			s.logger.Error().Err(result.err).Uint("student_id", result.studentID).Msg("sweep evaluation failed")
			summary.Errors = append(summary.Errors, dto.SweepError{
				StudentID: result.studentID,
				Error:     result.err.Error(),
			})
			continue
		}
		summary.Evaluated++
		summary.AlertsCreated += result.alerts
	}

	span.AddEvent("sweep finished", trace.WithAttributes(
		attribute.Int("sweep.evaluated", summary.Evaluated),
		attribute.Int("sweep.alerts_created", summary.AlertsCreated),
		attribute.Int("sweep.failed", len(summary.Errors)),
	))

	s.logger.Info().
		Int("evaluated", summary.Evaluated).
		Int("alerts_created", summary.AlertsCreated).
		Int("failed", len(summary.Errors)).
		Msg("evaluation sweep finished")

	return summary, ctx.Err()
}
