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
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

type stubContentService struct {
	content dto.DailyContent
}

func (s stubContentService) GetTodayContent(context.Context, uint) (dto.DailyContent, error) {
	return s.content, nil
}

func (s stubContentService) GetNextDayContent(context.Context, uint) (dto.DailyContent, error) {
	return s.content, nil
}

func (s stubContentService) Advance(context.Context, uint, quran.Position) error {
	return nil
}

func (s stubContentService) ResetDailyTracking(context.Context, uint) error {
	return nil
}

func TestDailyContentContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "daily_content.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	reference := quran.NewMemory()
	content := dto.DailyContent{
		StudentID: 1,
		Date:      "2026-03-15",
		Memorization: &dto.ContentAssignment{
			Type:       "memorization",
			StartSurah: 2,
			StartVerse: 1,
			EndSurah:   2,
			EndVerse:   10,
			Content:    reference.FormatRange(2, 1, 2, 10),
			VerseCount: 10,
			Pages:      1,
		},
		MinorReview: &dto.ContentAssignment{
			Type:       "minor_review",
			StartSurah: 1,
			StartVerse: 1,
			EndSurah:   1,
			EndVerse:   7,
			Content:    reference.FormatRange(1, 1, 1, 7),
			VerseCount: 7,
			Pages:      2,
		},
		ComputedAt: time.Now().UTC(),
	}

	serviceStub := stubContentService{content: content}
	contentHandler := handler.NewContentHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	contentHandler.Register(app.Group("/api/v1/students"))

	for _, path := range []string{
		"/api/v1/students/1/content/today",
		"/api/v1/students/1/content/next",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		var payload interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.NoError(t, schema.Validate(payload))
	}
}
