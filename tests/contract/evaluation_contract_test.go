package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/handler"
)

type stubEvaluationService struct {
	response dto.EvaluationResponse
}

func (s stubEvaluationService) EvaluateStudent(context.Context, uint) (dto.EvaluationResponse, error) {
	return s.response, nil
}

func (s stubEvaluationService) EvaluateAllActiveStudents(context.Context) (dto.SweepSummary, error) {
	return dto.SweepSummary{}, nil
}

func TestStudentEvaluationContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "evaluation.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	expires := now.Add(30 * 24 * time.Hour)
	suggested := uint(3)

	evaluation := dto.EvaluationResponse{
		StudentID: 1,
		Analysis: dto.PerformanceAnalysis{
			WindowDays:         14,
			TotalSessions:      10,
			CompletedSessions:  8,
			CompletionRate:     80,
			AverageScore:       86.5,
			ErrorRate:          1.2,
			ConsistencyRate:    57.1,
			DistinctActiveDays: 8,
			Trend:              dto.TrendImproving,
		},
		Readiness: dto.ReadinessResult{
			Score:      87.5,
			Tier:       dto.TierExcellent,
			Ready:      true,
			Confidence: "very_high",
			Breakdown: dto.ReadinessBreakdown{
				Completion:  20,
				Performance: 25,
				Consistency: 16,
				Mastery:     18.5,
				Tenure:      8,
			},
			Recommendations: []string{"الطالب مؤهل للانتقال إلى المستوى التالي"},
			NextSteps:       []string{"مراجعة أداء الطالب مع المعلم المشرف"},
		},
		Alerts: []dto.AlertResponse{
			{
				ID:                    5,
				StudentID:             1,
				TeacherID:             9,
				CurrentCurriculumID:   2,
				SuggestedCurriculumID: &suggested,
				AlertType:             "level_progression",
				Priority:              "high",
				Message:               "الطالب جاهز للانتقال إلى المستوى التالي",
				Status:                "pending",
				TriggeredAt:           now,
				ExpiresAt:             &expires,
			},
		},
	}

	serviceStub := stubEvaluationService{response: evaluation}
	evaluationHandler := handler.NewEvaluationHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	evaluationHandler.RegisterStudentRoutes(app.Group("/api/v1/students"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/1/evaluate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
