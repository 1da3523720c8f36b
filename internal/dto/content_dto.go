package dto

import "time"

// ContentAssignment is one recitation unit assigned for a day.
type ContentAssignment struct {
	Type       string  `json:"type"`
	StartSurah int     `json:"start_surah"`
	StartVerse int     `json:"start_verse"`
	EndSurah   int     `json:"end_surah"`
	EndVerse   int     `json:"end_verse"`
	Content    string  `json:"content"`
	VerseCount int     `json:"verse_count"`
	Pages      float64 `json:"pages"`
}

// DailyContent bundles the three assignments computed for one student and
// one date. CurriculumCompleted is set instead of wrapping past the end of
// the mushaf.
type DailyContent struct {
	StudentID           uint               `json:"student_id"`
	Date                string             `json:"date"`
	Memorization        *ContentAssignment `json:"memorization"`
	MinorReview         *ContentAssignment `json:"minor_review"`
	MajorReview         *ContentAssignment `json:"major_review"`
	CurriculumCompleted bool               `json:"curriculum_completed"`
	ComputedAt          time.Time          `json:"computed_at"`
}
