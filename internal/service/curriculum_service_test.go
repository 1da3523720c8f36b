package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

func newCurriculumService(repo *fakeCurriculumRepo) CurriculumService {
	return NewCurriculumService(repo, quran.NewMemory(), validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func seedCurriculum(t *testing.T, repo *fakeCurriculumRepo) models.Curriculum {
	t.Helper()
	curriculum := models.Curriculum{
		Name: "منهج الحفظ الأساسي",
		Type: models.CurriculumTypeTeacherLed,
	}
	require.NoError(t, repo.Create(context.Background(), &curriculum))
	return curriculum
}

func TestGeneratePlansOneYearTemplate(t *testing.T) {
	repo := newFakeCurriculumRepo()
	svc := newCurriculumService(repo)
	curriculum := seedCurriculum(t, repo)

	summary, err := svc.GeneratePlans(context.Background(), curriculum.ID, dto.GeneratePlansRequest{
		Template:       "one_year",
		SelectedSurahs: []int{1, 108},
	})
	require.NoError(t, err)

	// Both surahs fit inside a single 17-verse chunk.
	require.Equal(t, 2, summary.PlansCreated)
	require.Equal(t, 0, summary.PlansSkipped)
	require.Equal(t, 10, summary.TotalVerses)
	require.Equal(t, 2, summary.ExpectedDays)

	plans, err := svc.ListPlans(context.Background(), curriculum.ID, "")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, models.PlanTypeLesson, plans[0].PlanType)
	require.Equal(t, 1, plans[0].StartSurah)
	require.Equal(t, 1, plans[0].StartVerse)
	require.Equal(t, 7, plans[0].EndVerse)
	require.Equal(t, 108, plans[1].StartSurah)
	require.Equal(t, 3, plans[1].EndVerse)
	require.NotEmpty(t, plans[0].Content)
}

func TestGeneratePlansChunksLongSurah(t *testing.T) {
	repo := newFakeCurriculumRepo()
	svc := newCurriculumService(repo)
	curriculum := seedCurriculum(t, repo)

	summary, err := svc.GeneratePlans(context.Background(), curriculum.ID, dto.GeneratePlansRequest{
		Template:       "one_year",
		SelectedSurahs: []int{2},
	})
	require.NoError(t, err)

	// 286 verses in 17-verse chunks: 17 plans, the last one shorter.
	require.Equal(t, 17, summary.PlansCreated)
	require.Equal(t, 286, summary.TotalVerses)

	plans, err := svc.ListPlans(context.Background(), curriculum.ID, "")
	require.NoError(t, err)
	require.Len(t, plans, 17)
	last := plans[len(plans)-1]
	require.Equal(t, 273, last.StartVerse)
	require.Equal(t, 286, last.EndVerse)
}

func TestGeneratePlansContinuesOrderIndex(t *testing.T) {
	repo := newFakeCurriculumRepo()
	svc := newCurriculumService(repo)
	curriculum := seedCurriculum(t, repo)

	_, err := svc.GeneratePlans(context.Background(), curriculum.ID, dto.GeneratePlansRequest{
		Template:       "one_year",
		SelectedSurahs: []int{1},
	})
	require.NoError(t, err)

	_, err = svc.GeneratePlans(context.Background(), curriculum.ID, dto.GeneratePlansRequest{
		Template:       "intensive_review",
		SelectedSurahs: []int{114},
	})
	require.NoError(t, err)

	plans, err := svc.ListPlans(context.Background(), curriculum.ID, "")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, 0, plans[0].OrderIndex)
	require.Equal(t, 1, plans[1].OrderIndex)
	require.Equal(t, models.PlanTypeMajorReview, plans[1].PlanType)
}

func TestGeneratePlansUnknownTemplate(t *testing.T) {
	repo := newFakeCurriculumRepo()
	svc := newCurriculumService(repo)
	curriculum := seedCurriculum(t, repo)

	_, err := svc.GeneratePlans(context.Background(), curriculum.ID, dto.GeneratePlansRequest{
		Template: "weekend_sprint",
	})
	require.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestGeneratePlansCurriculumNotFound(t *testing.T) {
	svc := newCurriculumService(newFakeCurriculumRepo())

	_, err := svc.GeneratePlans(context.Background(), 42, dto.GeneratePlansRequest{
		Template: "one_year",
	})
	require.ErrorIs(t, err, ErrCurriculumNotFound)
}

func TestCurriculumCreateValidation(t *testing.T) {
	svc := newCurriculumService(newFakeCurriculumRepo())

	_, err := svc.Create(context.Background(), dto.CurriculumCreateRequest{
		Name: "قص",
		Type: "self_paced",
	})
	require.Error(t, err)
}

func TestCurriculumGetNotFound(t *testing.T) {
	svc := newCurriculumService(newFakeCurriculumRepo())

	_, err := svc.Get(context.Background(), 7)
	require.ErrorIs(t, err, ErrCurriculumNotFound)
}
