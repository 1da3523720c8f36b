// Package quran provides read-only reference data for the 114 surahs of the
// Quran together with verse-range validation, counting and formatting helpers.
// All range helpers treat an invalid range as a validation signal and return
// zero values instead of errors.
package quran

// TotalSurahs is the number of surahs in the Quran.
const TotalSurahs = 114

// TotalVerses is the number of verses across all surahs.
const TotalVerses = 6236

// TotalPages is the page count of the standard Madani mushaf.
const TotalPages = 604

// Position identifies a single verse.
type Position struct {
	Surah int
	Verse int
}

// Range describes a contiguous span of verses, possibly crossing surah
// boundaries. For a single-surah range StartSurah == EndSurah.
type Range struct {
	StartSurah int
	StartVerse int
	EndSurah   int
	EndVerse   int
}

// Provider exposes the reference lookups the engine depends on. It is
// injected rather than accessed globally so tests can substitute alternate
// tables.
type Provider interface {
	VerseCount(surah int) int
	Name(surah int) string
	VerseCountInRange(surah, startVerse, endVerse int) int
	VerseCountAcrossSurahs(startSurah, startVerse, endSurah, endVerse int) int
	FormatRange(startSurah, startVerse, endSurah, endVerse int) string
	ValidateRange(startSurah, startVerse, endSurah, endVerse int) bool
	SeekForward(from Position, verses int) (Position, bool)
	SeekBackward(from Position, verses int) (Position, bool)
	VersesBetween(from, to Position) int
}
