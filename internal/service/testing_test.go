package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeAssignmentRepo is an in-memory StudentCurriculumRepository.
type fakeAssignmentRepo struct {
	mu          sync.Mutex
	nextID      uint
	assignments map[uint]models.StudentCurriculum
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[uint]models.StudentCurriculum{}}
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.StudentCurriculum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok {
		return models.StudentCurriculum{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) GetActiveByStudent(_ context.Context, studentID uint) (models.StudentCurriculum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, assignment := range f.assignments {
		if assignment.StudentID == studentID && assignment.Status == models.AssignmentStatusInProgress {
			return assignment, nil
		}
	}
	return models.StudentCurriculum{}, gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) ListActive(_ context.Context) ([]models.StudentCurriculum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []models.StudentCurriculum
	for _, assignment := range f.assignments {
		if assignment.Status == models.AssignmentStatusInProgress {
			active = append(active, assignment)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (f *fakeAssignmentRepo) HasActive(_ context.Context, studentID, curriculumID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, assignment := range f.assignments {
		if assignment.StudentID == studentID && assignment.CurriculumID == curriculumID &&
			assignment.Status == models.AssignmentStatusInProgress {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.StudentCurriculum) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	assignment.ID = f.nextID
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.StudentCurriculum) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) UpdateStatus(_ context.Context, id uint, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok || assignment.Status != from {
		return false, nil
	}
	assignment.Status = to
	f.assignments[id] = assignment
	return true, nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	nextID   uint
	sessions []models.RecitationSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.RecitationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = f.nextID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *models.RecitationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sessions {
		if f.sessions[i].ID == session.ID {
			f.sessions[i] = *session
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (models.RecitationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.sessions {
		if session.SessionID == sessionID {
			return session, nil
		}
	}
	return models.RecitationSession{}, gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) ListSince(_ context.Context, studentID uint, since time.Time) ([]models.RecitationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.RecitationSession
	for _, session := range f.sessions {
		if session.StudentID == studentID && !session.CreatedAt.Before(since) {
			matched = append(matched, session)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	return matched, nil
}

func (f *fakeSessionRepo) LastCompleted(_ context.Context, studentID, curriculumID uint) (models.RecitationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *models.RecitationSession
	for i := range f.sessions {
		session := f.sessions[i]
		if session.StudentID != studentID || session.CurriculumID == nil || *session.CurriculumID != curriculumID {
			continue
		}
		if !session.IsCompleted() || session.CompletedAt == nil {
			continue
		}
		if found == nil || session.CompletedAt.After(*found.CompletedAt) {
			found = &f.sessions[i]
		}
	}
	if found == nil {
		return models.RecitationSession{}, gorm.ErrRecordNotFound
	}
	return *found, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeAlertRepo is an in-memory AlertRepository. ApplyTransition mutates the
// linked assignment repo the way the real transaction does.
type fakeAlertRepo struct {
	mu          sync.Mutex
	nextID      uint
	alerts      map[uint]models.CurriculumAlert
	assignments *fakeAssignmentRepo

	// afterGet, when set, runs after GetByID returns its copy. Lets tests
	// interleave a competing writer between read and apply.
	afterGet func()
}

func newFakeAlertRepo(assignments *fakeAssignmentRepo) *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[uint]models.CurriculumAlert{}, assignments: assignments}
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *models.CurriculumAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	alert.ID = f.nextID
	f.alerts[alert.ID] = *alert
	return nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id uint) (models.CurriculumAlert, error) {
	f.mu.Lock()
	alert, ok := f.alerts[id]
	hook := f.afterGet
	f.mu.Unlock()
	if !ok {
		return models.CurriculumAlert{}, gorm.ErrRecordNotFound
	}
	if hook != nil {
		hook()
	}
	return alert, nil
}

func (f *fakeAlertRepo) Update(_ context.Context, alert *models.CurriculumAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.alerts[alert.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.alerts[alert.ID] = *alert
	return nil
}

func (f *fakeAlertRepo) MarkReviewed(_ context.Context, alert *models.CurriculumAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.alerts[alert.ID]
	if !ok || stored.Status != models.AlertStatusPending {
		return gorm.ErrRecordNotFound
	}
	stored.Status = models.AlertStatusReviewed
	stored.Decision = alert.Decision
	stored.ReviewedAt = alert.ReviewedAt
	stored.ReviewedBy = alert.ReviewedBy
	stored.ReviewNotes = alert.ReviewNotes
	f.alerts[alert.ID] = stored
	return nil
}

func (f *fakeAlertRepo) HasRecentPending(_ context.Context, studentID uint, alertType string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.StudentID == studentID && alert.AlertType == alertType &&
			alert.Status == models.AlertStatusPending && !alert.TriggeredAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) ListPending(_ context.Context, filter repository.AlertFilter, reference time.Time) ([]models.CurriculumAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []models.CurriculumAlert
	for _, alert := range f.alerts {
		if alert.Status != models.AlertStatusPending || alert.IsExpired(reference) {
			continue
		}
		if filter.StudentID != nil && alert.StudentID != *filter.StudentID {
			continue
		}
		if filter.TeacherID != nil && alert.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.AlertType != "" && alert.AlertType != filter.AlertType {
			continue
		}
		if filter.Priority != "" && alert.Priority != filter.Priority {
			continue
		}
		pending = append(pending, alert)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (f *fakeAlertRepo) ApplyTransition(ctx context.Context, alertID uint, next models.StudentCurriculum, reference time.Time) (models.StudentCurriculum, error) {
	f.mu.Lock()
	alert, ok := f.alerts[alertID]
	if !ok || alert.Status != models.AlertStatusReviewed {
		f.mu.Unlock()
		return models.StudentCurriculum{}, gorm.ErrRecordNotFound
	}
	alert.Status = models.AlertStatusApplied
	alert.AppliedAt = &reference
	f.alerts[alertID] = alert
	f.mu.Unlock()

	current, err := f.assignments.GetActiveByStudent(ctx, next.StudentID)
	if err != nil {
		return models.StudentCurriculum{}, err
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

	if err := f.assignments.Update(ctx, &current); err != nil {
		return models.StudentCurriculum{}, err
	}
	return current, nil
}

// fakeCurriculumRepo is an in-memory CurriculumRepository.
type fakeCurriculumRepo struct {
	mu         sync.Mutex
	nextID     uint
	nextPlanID uint
	curricula  map[uint]models.Curriculum
	plans      []models.CurriculumPlan
}

func newFakeCurriculumRepo() *fakeCurriculumRepo {
	return &fakeCurriculumRepo{curricula: map[uint]models.Curriculum{}}
}

func (f *fakeCurriculumRepo) List(_ context.Context, _ repository.CurriculumFilter) ([]models.Curriculum, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Curriculum
	for _, curriculum := range f.curricula {
		all = append(all, curriculum)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, int64(len(all)), nil
}

func (f *fakeCurriculumRepo) GetByID(_ context.Context, id uint) (models.Curriculum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	curriculum, ok := f.curricula[id]
	if !ok {
		return models.Curriculum{}, gorm.ErrRecordNotFound
	}
	return curriculum, nil
}

func (f *fakeCurriculumRepo) GetWithPlans(ctx context.Context, id uint) (models.Curriculum, error) {
	curriculum, err := f.GetByID(ctx, id)
	if err != nil {
		return models.Curriculum{}, err
	}
	curriculum.Plans, _ = f.ListPlans(ctx, id, "")
	return curriculum, nil
}

func (f *fakeCurriculumRepo) Create(_ context.Context, curriculum *models.Curriculum) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	curriculum.ID = f.nextID
	for i := range curriculum.Levels {
		curriculum.Levels[i].ID = uint(i + 1)
		curriculum.Levels[i].CurriculumID = curriculum.ID
	}
	f.curricula[curriculum.ID] = *curriculum
	return nil
}

func (f *fakeCurriculumRepo) Update(_ context.Context, curriculum *models.Curriculum) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.curricula[curriculum.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.curricula[curriculum.ID] = *curriculum
	return nil
}

func (f *fakeCurriculumRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.curricula[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.curricula, id)
	return nil
}

func (f *fakeCurriculumRepo) ListLevels(_ context.Context, curriculumID uint) ([]models.CurriculumLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	curriculum, ok := f.curricula[curriculumID]
	if !ok {
		return nil, nil
	}
	levels := append([]models.CurriculumLevel(nil), curriculum.Levels...)
	sort.Slice(levels, func(i, j int) bool { return levels[i].Order < levels[j].Order })
	return levels, nil
}

func (f *fakeCurriculumRepo) NextLevel(ctx context.Context, curriculumID uint, afterOrder int) (models.CurriculumLevel, error) {
	levels, _ := f.ListLevels(ctx, curriculumID)
	for _, level := range levels {
		if level.Order > afterOrder {
			return level, nil
		}
	}
	return models.CurriculumLevel{}, gorm.ErrRecordNotFound
}

func (f *fakeCurriculumRepo) CreatePlans(_ context.Context, plans []models.CurriculumPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range plans {
		f.nextPlanID++
		plans[i].ID = f.nextPlanID
		f.plans = append(f.plans, plans[i])
	}
	return nil
}

func (f *fakeCurriculumRepo) ListPlans(_ context.Context, curriculumID uint, planType string) ([]models.CurriculumPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.CurriculumPlan
	for _, plan := range f.plans {
		if plan.CurriculumID != curriculumID {
			continue
		}
		if planType != "" && plan.PlanType != planType {
			continue
		}
		matched = append(matched, plan)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].OrderIndex < matched[j].OrderIndex })
	return matched, nil
}

func (f *fakeCurriculumRepo) CountPlans(_ context.Context, curriculumID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, plan := range f.plans {
		if plan.CurriculumID == curriculumID {
			total++
		}
	}
	return total, nil
}

// fakeStudentRepo is an in-memory StudentRepository.
type fakeStudentRepo struct {
	students map[uint]models.Student
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: map[uint]models.Student{}}
	for _, student := range students {
		repo.students[student.ID] = student
	}
	return repo
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) ListActiveIDs(_ context.Context) ([]uint, error) {
	var ids []uint
	for id, student := range f.students {
		if student.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// fakeProgressRepo is an in-memory ProgressRepository.
type fakeProgressRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.StudentCurriculumProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (f *fakeProgressRepo) GetOrCreate(_ context.Context, assignmentID, planID uint, startDate time.Time) (models.StudentCurriculumProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.StudentCurriculumID == assignmentID && row.CurriculumPlanID == planID {
			return row, nil
		}
	}
	f.nextID++
	row := models.StudentCurriculumProgress{
		ID:                  f.nextID,
		StudentCurriculumID: assignmentID,
		CurriculumPlanID:    planID,
		StartDate:           startDate,
		Status:              models.ProgressStatusInProgress,
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeProgressRepo) Update(_ context.Context, progress *models.StudentCurriculumProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == progress.ID {
			f.rows[i] = *progress
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeProgressRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.StudentCurriculumProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.StudentCurriculumProgress
	for _, row := range f.rows {
		if row.StudentCurriculumID == assignmentID {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (f *fakeProgressRepo) SetCompletionPct(_ context.Context, assignmentID uint, pct float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].StudentCurriculumID == assignmentID {
			f.rows[i].CompletionPct = pct
		}
	}
	return nil
}

func (f *fakeProgressRepo) CountByAssignment(_ context.Context, assignmentID uint) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, completed int64
	for _, row := range f.rows {
		if row.StudentCurriculumID != assignmentID {
			continue
		}
		total++
		if row.Status == models.ProgressStatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

// fakeNotifier records deliveries and answers with a configurable result.
type fakeNotifier struct {
	mu         sync.Mutex
	ok         bool
	recipients []string
	templates  []string
}

func (f *fakeNotifier) Notify(_ context.Context, recipient, templateKey string, _ map[string]string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients = append(f.recipients, recipient)
	f.templates = append(f.templates, templateKey)
	return f.ok
}

// fakeContentService satisfies DailyContentService for alert and recitation
// tests.
type fakeContentService struct {
	mu         sync.Mutex
	advances   []quran.Position
	resetCalls []uint
	resetErr   error
}

func (f *fakeContentService) GetTodayContent(context.Context, uint) (dto.DailyContent, error) {
	return dto.DailyContent{}, nil
}

func (f *fakeContentService) GetNextDayContent(context.Context, uint) (dto.DailyContent, error) {
	return dto.DailyContent{}, nil
}

func (f *fakeContentService) Advance(_ context.Context, _ uint, completedEnd quran.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advances = append(f.advances, completedEnd)
	return nil
}

func (f *fakeContentService) ResetDailyTracking(_ context.Context, studentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls = append(f.resetCalls, studentID)
	return f.resetErr
}

// fakeAlertManager satisfies AlertService for evaluation tests.
type fakeAlertManager struct {
	mu      sync.Mutex
	raises  []uint
	raised  []models.CurriculumAlert
	failFor map[uint]error
}

func (f *fakeAlertManager) RaiseFromEvaluation(_ context.Context, assignment models.StudentCurriculum, _ dto.PerformanceAnalysis, _ dto.ReadinessResult) ([]models.CurriculumAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[assignment.StudentID]; ok {
		return nil, err
	}
	f.raises = append(f.raises, assignment.StudentID)
	return f.raised, nil
}

func (f *fakeAlertManager) Decide(context.Context, uint, dto.DecideAlertRequest) (dto.AppliedResult, error) {
	return dto.AppliedResult{}, nil
}

func (f *fakeAlertManager) Dismiss(context.Context, uint, uint, string) (dto.AlertResponse, error) {
	return dto.AlertResponse{}, nil
}

func (f *fakeAlertManager) ListPending(context.Context, repository.AlertFilter) ([]dto.AlertResponse, error) {
	return nil, nil
}
