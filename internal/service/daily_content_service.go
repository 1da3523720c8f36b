package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

const contentDateLayout = "2006-01-02"

// DailyContentService computes what a student should recite on a given day.
// Today's content is cached per student per date, so repeated calls within
// the same day return identical assignments without advancing any state.
type DailyContentService interface {
	GetTodayContent(ctx context.Context, studentID uint) (dto.DailyContent, error)
	GetNextDayContent(ctx context.Context, studentID uint) (dto.DailyContent, error)
	Advance(ctx context.Context, studentID uint, completedEnd quran.Position) error
	ResetDailyTracking(ctx context.Context, studentID uint) error
}

type dailyContentService struct {
	assignments repository.StudentCurriculumRepository
	sessions    repository.SessionRepository
	reference   quran.Provider
	cache       *redis.Client
	cacheTTL    time.Duration
	cfg         config.EngineConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDailyContentService constructs the calculator.
func NewDailyContentService(
	assignments repository.StudentCurriculumRepository,
	sessions repository.SessionRepository,
	reference quran.Provider,
	cache *redis.Client,
	cacheTTL time.Duration,
	cfg config.EngineConfig,
	logger zerolog.Logger,
) DailyContentService {
	return &dailyContentService{
		assignments: assignments,
		sessions:    sessions,
		reference:   reference,
		cache:       cache,
		cacheTTL:    cacheTTL,
		cfg:         cfg,
		logger:      logger.With().Str("component", "daily_content_service").Logger(),
		now:         time.Now,
	}
}

func (s *dailyContentService) GetTodayContent(ctx context.Context, studentID uint) (dto.DailyContent, error) {
	assignment, err := s.activeAssignment(ctx, studentID)
	if err != nil {
		return dto.DailyContent{}, err
	}

	today := s.now().Format(contentDateLayout)
	cacheKey := contentCacheKey(studentID, today)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var content dto.DailyContent
			if unmarshalErr := json.Unmarshal([]byte(cached), &content); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("daily content cache hit")
				return content, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read daily content cache")
		}
	}

	start := quran.Position{Surah: assignment.CurrentSurah, Verse: assignment.CurrentAyah}
	content := s.compute(assignment, start, today)
	s.storeCache(ctx, cacheKey, content)

	return content, nil
}

func (s *dailyContentService) GetNextDayContent(ctx context.Context, studentID uint) (dto.DailyContent, error) {
	assignment, err := s.activeAssignment(ctx, studentID)
	if err != nil {
		return dto.DailyContent{}, err
	}

	// Tomorrow starts strictly after the last completed session for this
	// curriculum; with no history the curriculum start point applies.
	start := quran.Position{Surah: assignment.CurrentSurah, Verse: assignment.CurrentAyah}
	last, err := s.sessions.LastCompleted(ctx, studentID, assignment.CurriculumID)
	if err == nil {
		next, ok := s.reference.SeekForward(quran.Position{Surah: last.EndSurah, Verse: last.EndVerse}, 1)
		if !ok {
			tomorrow := s.now().AddDate(0, 0, 1).Format(contentDateLayout)
			return dto.DailyContent{
				StudentID:           studentID,
				Date:                tomorrow,
				CurriculumCompleted: true,
				ComputedAt:          s.now(),
			}, nil
		}
		start = next
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.DailyContent{}, err
	}

	tomorrow := s.now().AddDate(0, 0, 1).Format(contentDateLayout)
	return s.compute(assignment, start, tomorrow), nil
}

// Advance moves the student's position past the completed content and
// maintains the consecutive-day streak. Completion percentage is derived
// from the mushaf page reached.
func (s *dailyContentService) Advance(ctx context.Context, studentID uint, completedEnd quran.Position) error {
	assignment, err := s.activeAssignment(ctx, studentID)
	if err != nil {
		return err
	}

	now := s.now()

	next, ok := s.reference.SeekForward(completedEnd, 1)
	if !ok {
		// Memorization reached the end of the mushaf: report curriculum
		// completion instead of wrapping.
		completion := now
		assignment.Status = models.AssignmentStatusCompleted
		assignment.CompletionDate = &completion
		assignment.CompletionPct = 100
		assignment.CurrentPage = quran.TotalPages
		assignment.CurrentSurah = quran.TotalSurahs
		assignment.CurrentAyah = s.reference.VerseCount(quran.TotalSurahs)
		return s.assignments.Update(ctx, &assignment)
	}

	assignment.CurrentSurah = next.Surah
	assignment.CurrentAyah = next.Verse
	assignment.CurrentPage += int(math.Max(1, math.Round(assignment.MemorizationPages)))
	if assignment.CurrentPage > quran.TotalPages {
		assignment.CurrentPage = quran.TotalPages
	}
	assignment.CompletionPct = round1(float64(assignment.CurrentPage) / float64(quran.TotalPages) * 100)

	// A gap of more than one calendar day restarts the streak at 1, not 0:
	// the advance that ends the gap is itself a completed day.
	today := dateOnly(now)
	switch {
	case assignment.LastAdvancedAt == nil:
		assignment.ConsecutiveDays = 1
	case dateOnly(*assignment.LastAdvancedAt).Equal(today):
		// Second completed session on the same day does not extend the streak.
	case dateOnly(*assignment.LastAdvancedAt).Equal(today.AddDate(0, 0, -1)):
		assignment.ConsecutiveDays++
	default:
		assignment.ConsecutiveDays = 1
	}
	assignment.LastAdvancedAt = &now

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return err
	}

	s.invalidate(ctx, studentID, now)
	return nil
}

// ResetDailyTracking clears cached content and streak counters without
// touching historical progress rows. Used on curriculum transition.
func (s *dailyContentService) ResetDailyTracking(ctx context.Context, studentID uint) error {
	assignment, err := s.activeAssignment(ctx, studentID)
	if err != nil {
		return err
	}

	assignment.ConsecutiveDays = 0
	assignment.LastAdvancedAt = nil
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return err
	}

	s.invalidate(ctx, studentID, s.now())
	return nil
}

func (s *dailyContentService) activeAssignment(ctx context.Context, studentID uint) (models.StudentCurriculum, error) {
	assignment, err := s.assignments.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentCurriculum{}, ErrAssignmentNotFound
		}
		return models.StudentCurriculum{}, err
	}
	return assignment, nil
}

// compute builds the three assignments for one date from a starting
// position. It is deterministic for a given (assignment state, date) pair.
func (s *dailyContentService) compute(assignment models.StudentCurriculum, start quran.Position, date string) dto.DailyContent {
	content := dto.DailyContent{
		StudentID:  assignment.StudentID,
		Date:       date,
		ComputedAt: s.now(),
	}

	if assignment.CurrentPage > quran.TotalPages || s.reference.VerseCount(start.Surah) == 0 {
		content.CurriculumCompleted = true
		return content
	}

	memVerses := pagesToVerses(assignment.MemorizationPages, s.cfg.VersesPerPage)
	memEnd, ok := s.reference.SeekForward(start, memVerses-1)
	if !ok {
		content.CurriculumCompleted = true
	}
	content.Memorization = s.assignmentFor(models.RecitationTypeMemorization, start, memEnd, assignment.MemorizationPages)

	// Minor review walks back over the most recently memorized material.
	if prev, ok := s.reference.SeekBackward(start, 1); ok && (prev != start) {
		minorVerses := pagesToVerses(assignment.MinorReviewPages, s.cfg.VersesPerPage)
		minorStart, _ := s.reference.SeekBackward(prev, minorVerses-1)
		content.MinorReview = s.assignmentFor(models.RecitationTypeMinorReview, minorStart, prev, assignment.MinorReviewPages)

		// Major review rotates deterministically through everything
		// memorized so far, keyed by the date.
		memorized := s.reference.VersesBetween(quran.Position{Surah: 1, Verse: 1}, prev)
		majorVerses := pagesToVerses(assignment.MajorReviewPages, s.cfg.VersesPerPage)
		if memorized > minorVerses {
			day, parseErr := time.Parse(contentDateLayout, date)
			if parseErr != nil {
				day = s.now()
			}
			offset := (day.YearDay() * majorVerses) % memorized
			majorStart, _ := s.reference.SeekForward(quran.Position{Surah: 1, Verse: 1}, offset)
			majorEnd, ok := s.reference.SeekForward(majorStart, majorVerses-1)
			if !ok || s.reference.VersesBetween(majorStart, prev) < majorVerses {
				majorEnd = prev
			}
			content.MajorReview = s.assignmentFor(models.RecitationTypeMajorReview, majorStart, majorEnd, assignment.MajorReviewPages)
		}
	}

	return content
}

func (s *dailyContentService) assignmentFor(recitationType string, start, end quran.Position, pages float64) *dto.ContentAssignment {
	return &dto.ContentAssignment{
		Type:       recitationType,
		StartSurah: start.Surah,
		StartVerse: start.Verse,
		EndSurah:   end.Surah,
		EndVerse:   end.Verse,
		Content:    s.reference.FormatRange(start.Surah, start.Verse, end.Surah, end.Verse),
		VerseCount: s.reference.VersesBetween(start, end),
		Pages:      pages,
	}
}

func (s *dailyContentService) storeCache(ctx context.Context, key string, content dto.DailyContent) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(content)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store daily content cache")
	}
}

// invalidate drops cached content for today and tomorrow after position
// state changes.
func (s *dailyContentService) invalidate(ctx context.Context, studentID uint, reference time.Time) {
	if s.cache == nil {
		return
	}
	keys := []string{
		contentCacheKey(studentID, reference.Format(contentDateLayout)),
		contentCacheKey(studentID, reference.AddDate(0, 0, 1).Format(contentDateLayout)),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate daily content cache")
	}
}

func contentCacheKey(studentID uint, date string) string {
	return fmt.Sprintf("content:student:%d:%s", studentID, date)
}

func pagesToVerses(pages, versesPerPage float64) int {
	verses := int(math.Round(pages * versesPerPage))
	if verses < 1 {
		verses = 1
	}
	return verses
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
