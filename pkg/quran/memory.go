package quran

import "fmt"

type surahInfo struct {
	name   string
	verses int
}

// Canonical surah table (Madani mushaf, Hafs). Index 0 is surah 1.
var surahs = [TotalSurahs]surahInfo{
	{"الفاتحة", 7}, {"البقرة", 286}, {"آل عمران", 200}, {"النساء", 176},
	{"المائدة", 120}, {"الأنعام", 165}, {"الأعراف", 206}, {"الأنفال", 75},
	{"التوبة", 129}, {"يونس", 109}, {"هود", 123}, {"يوسف", 111},
	{"الرعد", 43}, {"إبراهيم", 52}, {"الحجر", 99}, {"النحل", 128},
	{"الإسراء", 111}, {"الكهف", 110}, {"مريم", 98}, {"طه", 135},
	{"الأنبياء", 112}, {"الحج", 78}, {"المؤمنون", 118}, {"النور", 64},
	{"الفرقان", 77}, {"الشعراء", 227}, {"النمل", 93}, {"القصص", 88},
	{"العنكبوت", 69}, {"الروم", 60}, {"لقمان", 34}, {"السجدة", 30},
	{"الأحزاب", 73}, {"سبأ", 54}, {"فاطر", 45}, {"يس", 83},
	{"الصافات", 182}, {"ص", 88}, {"الزمر", 75}, {"غافر", 85},
	{"فصلت", 54}, {"الشورى", 53}, {"الزخرف", 89}, {"الدخان", 59},
	{"الجاثية", 37}, {"الأحقاف", 35}, {"محمد", 38}, {"الفتح", 29},
	{"الحجرات", 18}, {"ق", 45}, {"الذاريات", 60}, {"الطور", 49},
	{"النجم", 62}, {"القمر", 55}, {"الرحمن", 78}, {"الواقعة", 96},
	{"الحديد", 29}, {"المجادلة", 22}, {"الحشر", 24}, {"الممتحنة", 13},
	{"الصف", 14}, {"الجمعة", 11}, {"المنافقون", 11}, {"التغابن", 18},
	{"الطلاق", 12}, {"التحريم", 12}, {"الملك", 30}, {"القلم", 52},
	{"الحاقة", 52}, {"المعارج", 44}, {"نوح", 28}, {"الجن", 28},
	{"المزمل", 20}, {"المدثر", 56}, {"القيامة", 40}, {"الإنسان", 31},
	{"المرسلات", 50}, {"النبأ", 40}, {"النازعات", 46}, {"عبس", 42},
	{"التكوير", 29}, {"الانفطار", 19}, {"المطففين", 36}, {"الانشقاق", 25},
	{"البروج", 22}, {"الطارق", 17}, {"الأعلى", 19}, {"الغاشية", 26},
	{"الفجر", 30}, {"البلد", 20}, {"الشمس", 15}, {"الليل", 21},
	{"الضحى", 11}, {"الشرح", 8}, {"التين", 8}, {"العلق", 19},
	{"القدر", 5}, {"البينة", 8}, {"الزلزلة", 8}, {"العاديات", 11},
	{"القارعة", 11}, {"التكاثر", 8}, {"العصر", 3}, {"الهمزة", 9},
	{"الفيل", 5}, {"قريش", 4}, {"الماعون", 7}, {"الكوثر", 3},
	{"الكافرون", 6}, {"النصر", 3}, {"المسد", 5}, {"الإخلاص", 4},
	{"الفلق", 5}, {"الناس", 6},
}

// Memory is the in-memory Provider over the canonical surah table.
type Memory struct{}

// NewMemory returns the in-memory reference provider.
func NewMemory() *Memory {
	return &Memory{}
}

// VerseCount returns the number of verses in the surah, or 0 for an unknown
// surah number.
func (Memory) VerseCount(surah int) int {
	if surah < 1 || surah > TotalSurahs {
		return 0
	}
	return surahs[surah-1].verses
}

// Name returns the Arabic name of the surah, or an empty string for an
// unknown surah number.
func (Memory) Name(surah int) string {
	if surah < 1 || surah > TotalSurahs {
		return ""
	}
	return surahs[surah-1].name
}

// VerseCountInRange counts verses in a single-surah range. It returns 0 when
// the range is invalid (start < 1, end beyond the surah, or start > end).
func (m Memory) VerseCountInRange(surah, startVerse, endVerse int) int {
	total := m.VerseCount(surah)
	if total == 0 || startVerse < 1 || endVerse > total || startVerse > endVerse {
		return 0
	}
	return endVerse - startVerse + 1
}

// VerseCountAcrossSurahs counts verses in a range that may span multiple
// surahs. It returns 0 for any invalid range, including startSurah > endSurah.
func (m Memory) VerseCountAcrossSurahs(startSurah, startVerse, endSurah, endVerse int) int {
	if startSurah > endSurah {
		return 0
	}
	if startSurah == endSurah {
		return m.VerseCountInRange(startSurah, startVerse, endVerse)
	}

	first := m.VerseCount(startSurah)
	last := m.VerseCount(endSurah)
	if first == 0 || last == 0 || startVerse < 1 || startVerse > first || endVerse < 1 || endVerse > last {
		return 0
	}

	count := first - startVerse + 1
	for s := startSurah + 1; s < endSurah; s++ {
		count += m.VerseCount(s)
	}
	count += endVerse

	return count
}

// ValidateRange reports whether the span denotes an existing run of verses.
func (m Memory) ValidateRange(startSurah, startVerse, endSurah, endVerse int) bool {
	return m.VerseCountAcrossSurahs(startSurah, startVerse, endSurah, endVerse) > 0
}

// FormatRange renders a human-readable Arabic description of the span. A
// single verse is phrased differently from a multi-verse run.
func (m Memory) FormatRange(startSurah, startVerse, endSurah, endVerse int) string {
	if !m.ValidateRange(startSurah, startVerse, endSurah, endVerse) {
		return ""
	}

	if startSurah == endSurah {
		name := m.Name(startSurah)
		if startVerse == endVerse {
			return fmt.Sprintf("سورة %s الآية %d", name, startVerse)
		}
		return fmt.Sprintf("سورة %s من الآية %d إلى الآية %d", name, startVerse, endVerse)
	}

	return fmt.Sprintf("من سورة %s الآية %d إلى سورة %s الآية %d",
		m.Name(startSurah), startVerse, m.Name(endSurah), endVerse)
}

// SeekForward advances the position by n verses. The boolean is false when
// the seek runs past the end of the Quran; in that case the returned position
// is the last verse.
func (m Memory) SeekForward(from Position, verses int) (Position, bool) {
	if m.VerseCount(from.Surah) == 0 || from.Verse < 1 || from.Verse > m.VerseCount(from.Surah) {
		return Position{}, false
	}

	surah, verse := from.Surah, from.Verse
	for verses > 0 {
		remaining := m.VerseCount(surah) - verse
		if verses <= remaining {
			return Position{Surah: surah, Verse: verse + verses}, true
		}
		verses -= remaining + 1
		surah++
		if surah > TotalSurahs {
			return Position{Surah: TotalSurahs, Verse: m.VerseCount(TotalSurahs)}, false
		}
		verse = 1
		if verses == 0 {
			return Position{Surah: surah, Verse: verse}, true
		}
	}

	return Position{Surah: surah, Verse: verse}, true
}

// SeekBackward moves the position back by n verses, clamping at 1:1.
func (m Memory) SeekBackward(from Position, verses int) (Position, bool) {
	if m.VerseCount(from.Surah) == 0 || from.Verse < 1 || from.Verse > m.VerseCount(from.Surah) {
		return Position{}, false
	}

	surah, verse := from.Surah, from.Verse
	for verses > 0 {
		if verses < verse {
			return Position{Surah: surah, Verse: verse - verses}, true
		}
		verses -= verse
		surah--
		if surah < 1 {
			return Position{Surah: 1, Verse: 1}, false
		}
		verse = m.VerseCount(surah)
		if verses == 0 {
			return Position{Surah: surah, Verse: verse}, true
		}
	}

	return Position{Surah: surah, Verse: verse}, true
}

// VersesBetween counts verses from one position to another, inclusive of
// both endpoints. It returns 0 when `to` precedes `from` or either position
// is invalid.
func (m Memory) VersesBetween(from, to Position) int {
	return m.VerseCountAcrossSurahs(from.Surah, from.Verse, to.Surah, to.Verse)
}
