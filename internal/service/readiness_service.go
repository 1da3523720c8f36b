package service

import (
	"math"
	"time"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
)

// ReadinessInput is everything the scorer needs. The scorer performs no I/O
// so it can be unit-tested with fabricated inputs.
type ReadinessInput struct {
	Assignment models.StudentCurriculum
	Analysis   dto.PerformanceAnalysis
	Reference  time.Time
}

// ReadinessScorer combines curriculum completion, session performance, daily
// consistency, mastery and tenure into a 0-100 readiness score with a tier
// and recommendation lists.
type ReadinessScorer interface {
	Score(input ReadinessInput) dto.ReadinessResult
}

type readinessScorer struct {
	cfg config.EngineConfig
}

// NewReadinessScorer constructs the scorer with the given weights.
func NewReadinessScorer(cfg config.EngineConfig) ReadinessScorer {
	return &readinessScorer{cfg: cfg}
}

func (s *readinessScorer) Score(input ReadinessInput) dto.ReadinessResult {
	breakdown := dto.ReadinessBreakdown{
		Completion:  s.completionScore(input.Assignment),
		Performance: s.performanceScore(input.Analysis),
		Consistency: s.consistencyScore(input.Assignment, input.Reference),
		Mastery:     s.masteryScore(input.Analysis),
		Tenure:      s.tenureScore(input.Assignment, input.Reference),
	}

	total := round1(breakdown.Completion + breakdown.Performance + breakdown.Consistency +
		breakdown.Mastery + breakdown.Tenure)

	result := dto.ReadinessResult{
		Score:     total,
		Breakdown: breakdown,
	}

	switch {
	case total >= 85:
		result.Tier = dto.TierExcellent
		result.Ready = true
		result.Confidence = "very_high"
	case total >= 75:
		result.Tier = dto.TierVeryGood
		result.Ready = true
		result.Confidence = "high"
	case total >= 65:
		result.Tier = dto.TierGood
		result.Ready = true
		result.Confidence = "medium_high"
	case total >= 50:
		result.Tier = dto.TierNeedsImprovement
		result.Confidence = "medium"
	default:
		result.Tier = dto.TierNotReady
		result.Confidence = "low"
	}

	result.Recommendations, result.NextSteps = tierGuidance(result)

	return result
}

// completionScore is proportional to completion percentage, up to the
// configured weight.
func (s *readinessScorer) completionScore(assignment models.StudentCurriculum) float64 {
	pct := clamp(assignment.CompletionPct, 0, 100)
	return round1(pct / 100 * s.cfg.WeightCompletion)
}

// performanceScore combines a grade band, a consistency band and a trend
// bonus, capped at the configured weight.
func (s *readinessScorer) performanceScore(analysis dto.PerformanceAnalysis) float64 {
	var score float64

	switch {
	case analysis.AverageScore >= s.cfg.GradeExcellent:
		score += 15
	case analysis.AverageScore >= 85:
		score += 13
	case analysis.AverageScore >= s.cfg.GradeVeryGood:
		score += 11
	case analysis.AverageScore >= s.cfg.GradeGood:
		score += 8
	case analysis.AverageScore >= s.cfg.GradeAcceptable:
		score += 5
	case analysis.AverageScore > 0:
		score += 2
	}

	switch {
	case analysis.ConsistencyRate >= 85:
		score += 7
	case analysis.ConsistencyRate >= 70:
		score += 6
	case analysis.ConsistencyRate >= 50:
		score += 4
	case analysis.ConsistencyRate >= 30:
		score += 2
	}

	switch analysis.Trend {
	case dto.TrendImproving:
		score += 3
	case dto.TrendStable:
		score++
	}

	return clamp(score, 0, s.cfg.WeightPerformance)
}

// consistencyScore decays a 100-point base by 10 points per day of
// inactivity beyond the first, floors at 0, then bands into the weight.
func (s *readinessScorer) consistencyScore(assignment models.StudentCurriculum, reference time.Time) float64 {
	base := 100.0
	if assignment.LastAdvancedAt == nil {
		base = 0
	} else {
		inactiveDays := int(reference.Sub(*assignment.LastAdvancedAt).Hours() / 24)
		if inactiveDays > 1 {
			base -= float64(inactiveDays-1) * 10
		}
		if base < 0 {
			base = 0
		}
	}

	// Long streaks keep the band from collapsing after a single missed day.
	if assignment.ConsecutiveDays >= 14 && base < 60 {
		base = 60
	}

	switch {
	case base >= 90:
		return s.cfg.WeightConsistency
	case base >= 75:
		return round1(s.cfg.WeightConsistency * 0.8)
	case base >= 60:
		return round1(s.cfg.WeightConsistency * 0.6)
	case base >= 40:
		return round1(s.cfg.WeightConsistency * 0.4)
	case base >= 20:
		return round1(s.cfg.WeightConsistency * 0.2)
	default:
		return 0
	}
}

// masteryScore combines error-rate, grade-mastery and retention bands,
// capped at the configured weight.
func (s *readinessScorer) masteryScore(analysis dto.PerformanceAnalysis) float64 {
	var score float64

	switch {
	case analysis.TotalSessions == 0:
		// no evidence, no points
	case analysis.ErrorRate <= 0.5:
		score += 8
	case analysis.ErrorRate <= 1:
		score += 7
	case analysis.ErrorRate <= 2:
		score += 5
	case analysis.ErrorRate <= 3:
		score += 3
	}

	switch {
	case analysis.AverageScore >= s.cfg.GradeExcellent:
		score += 7
	case analysis.AverageScore >= s.cfg.GradeVeryGood:
		score += 5
	case analysis.AverageScore >= s.cfg.GradeGood:
		score += 3
	}

	switch {
	case analysis.CompletionRate >= 90:
		score += 5
	case analysis.CompletionRate >= 75:
		score += 4
	case analysis.CompletionRate >= 60:
		score += 2
	}

	return clamp(score, 0, s.cfg.WeightMastery)
}

// tenureScore rewards a 30-90 day stay in the current curriculum; shorter
// stays have not proven themselves and much longer stays suggest the student
// is stuck.
func (s *readinessScorer) tenureScore(assignment models.StudentCurriculum, reference time.Time) float64 {
	days := int(reference.Sub(assignment.StartDate).Hours() / 24)

	var fraction float64
	switch {
	case days >= 30 && days <= 90:
		fraction = 1
	case days > 90 && days <= 180:
		fraction = 0.7
	case days >= 14:
		fraction = 0.6
	case days >= 7:
		fraction = 0.3
	default:
		fraction = 0.2
	}

	return round1(s.cfg.WeightTenure * fraction)
}

// tierGuidance returns the recommendation strings and next-step checklist
// for the tier. Ready and not-ready paths deliberately carry distinct lists.
func tierGuidance(result dto.ReadinessResult) (recommendations, nextSteps []string) {
	if result.Ready {
		recommendations = []string{
			"الطالب مؤهل للانتقال إلى المستوى التالي",
			"يوصى بعرض التوصية على المعلم المشرف لاعتمادها",
		}
		nextSteps = []string{
			"مراجعة أداء الطالب مع المعلم المشرف",
			"اعتماد الانتقال إلى المنهج أو المستوى المقترح",
			"إعادة ضبط خطة الحفظ اليومية للمنهج الجديد",
		}
		if result.Tier == dto.TierExcellent {
			recommendations = append(recommendations, "أداء ممتاز؛ يمكن النظر في زيادة مقدار الحفظ اليومي")
		}
		return recommendations, nextSteps
	}

	recommendations = []string{
		"الطالب غير جاهز للانتقال في الوقت الحالي",
		"يوصى بالتركيز على نقاط الضعف قبل إعادة التقييم",
	}
	nextSteps = []string{
		"زيادة انتظام جلسات التسميع اليومية",
		"تكثيف المراجعة الصغرى للمقاطع الأخيرة",
		"إعادة التقييم بعد أسبوعين",
	}
	if result.Tier == dto.TierNotReady {
		nextSteps = append(nextSteps, "جدولة جلسة متابعة فردية مع المعلم")
	}
	return recommendations, nextSteps
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
