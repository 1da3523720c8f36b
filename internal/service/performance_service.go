package service

import (
	"math"
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// PerformanceAnalyzer derives aggregate metrics from a time-windowed session
// history. It is a pure function of its inputs: no I/O, so an empty history
// yields zero metrics rather than an error.
type PerformanceAnalyzer interface {
	Analyze(sessions []models.RecitationSession, reference time.Time) dto.PerformanceAnalysis
}

type performanceAnalyzer struct {
	cfg config.EngineConfig
}

// NewPerformanceAnalyzer constructs the analyzer with the given thresholds.
func NewPerformanceAnalyzer(cfg config.EngineConfig) PerformanceAnalyzer {
	return &performanceAnalyzer{cfg: cfg}
}

func (a *performanceAnalyzer) Analyze(sessions []models.RecitationSession, reference time.Time) dto.PerformanceAnalysis {
	analysis := dto.PerformanceAnalysis{
		WindowDays: a.cfg.AnalysisWindowDays,
		Trend:      dto.TrendInsufficientData,
	}

	if len(sessions) == 0 {
		analysis.AreasForImprovement = []string{"no recitation sessions recorded in the analysis window"}
		return analysis
	}

	activeDays := map[string]struct{}{}
	var completed int
	var gradeTotal float64
	var graded int
	var totalErrors int
	var scores []float64

	for _, session := range sessions {
		analysis.TotalSessions++
		totalErrors += session.TotalErrors
		activeDays[session.CreatedAt.Format("2006-01-02")] = struct{}{}

		if session.IsCompleted() {
			completed++
			if session.Grade != nil {
				gradeTotal += *session.Grade
				graded++
				scores = append(scores, *session.Grade)
			}
		}
	}

	analysis.CompletedSessions = completed
	analysis.DistinctActiveDays = len(activeDays)
	analysis.CompletionRate = round1(float64(completed) / float64(analysis.TotalSessions) * 100)
	if graded > 0 {
		analysis.AverageScore = round1(gradeTotal / float64(graded))
	}
	analysis.ErrorRate = round1(float64(totalErrors) / float64(analysis.TotalSessions))
	if a.cfg.AnalysisWindowDays > 0 {
		analysis.ConsistencyRate = round1(float64(len(activeDays)) / float64(a.cfg.AnalysisWindowDays) * 100)
	}
	analysis.Trend = a.trend(scores)
	analysis.AreasForImprovement = a.weakAreas(analysis)

	return analysis
}

// trend compares the mean of the most recent half of scores against the
// earlier half. Sessions are already ordered oldest first.
func (a *performanceAnalyzer) trend(scores []float64) string {
	if len(scores) < a.cfg.TrendMinSessions {
		return dto.TrendInsufficientData
	}

	half := len(scores) / 2
	earlier := mean(scores[:half])
	recent := mean(scores[half:])

	switch {
	case recent-earlier > a.cfg.TrendDelta:
		return dto.TrendImproving
	case recent-earlier < -a.cfg.TrendDelta:
		return dto.TrendDeclining
	default:
		return dto.TrendStable
	}
}

func (a *performanceAnalyzer) weakAreas(analysis dto.PerformanceAnalysis) []string {
	var areas []string

	if analysis.CompletionRate < 70 {
		areas = append(areas, "session completion rate below 70%")
	}
	if analysis.AverageScore > 0 && analysis.AverageScore < a.cfg.GradeGood {
		areas = append(areas, "average recitation grade below the good band")
	}
	if analysis.ErrorRate > 3 {
		areas = append(areas, "high recitation error rate")
	}
	if analysis.ConsistencyRate < 50 {
		areas = append(areas, "attendance below half of the analysis window")
	}
	if analysis.Trend == dto.TrendDeclining {
		areas = append(areas, "recent grades trending downward")
	}

	return areas
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
