package metadata

import (
	"cmp"
	"slices"
	"sort"
	"time"
)

const (
	primarySkillCount = 3
	recentWindow      = 30 * 24 * time.Hour
	highActivityRatio = 0.3
	monthLayout       = "2006-01"
	percentScale      = 100

	// ActivityHigh labels a corpus with many recently modified files.
	ActivityHigh = "high"
	// ActivityModerate is the label otherwise.
	ActivityModerate = "moderate"
)

// BasicStats are corpus-wide totals.
type BasicStats struct {
	TotalFiles      int   `json:"total_files"`
	TotalSize       int64 `json:"total_size"`
	TotalLines      int   `json:"total_lines"`
	TotalWords      int   `json:"total_words"`
	TotalCharacters int   `json:"total_characters"`
}

// ExtensionStat aggregates the files sharing one extension.
type ExtensionStat struct {
	Count       int     `json:"count"`
	TotalSize   int64   `json:"total_size"`
	AverageSize float64 `json:"average_size"`
	Category    string  `json:"category"`
	Percentage  float64 `json:"percentage"`
}

// SkillStat aggregates the files of one category.
type SkillStat struct {
	FileCount  int      `json:"file_count"`
	TotalSize  int64    `json:"total_size"`
	Percentage float64  `json:"percentage"`
	Extensions []string `json:"extensions"`
	Primary    bool     `json:"primary"`
}

// MonthBucket lists the files whose date falls in Month (YYYY-MM).
type MonthBucket struct {
	Month string   `json:"month"`
	Files []string `json:"files"`
}

// DateStats groups files by creation and modification month.
type DateStats struct {
	Created        []MonthBucket `json:"files_by_creation_month"`
	Modified       []MonthBucket `json:"files_by_modification_month"`
	RecentActivity int           `json:"recent_activity_count"`
	ActivityLevel  string        `json:"activity_level"`
}

// Analysis is the rollup of a metadata batch.
type Analysis struct {
	BasicStats     BasicStats               `json:"basic_stats"`
	ExtensionStats map[string]ExtensionStat `json:"extension_stats"`
	SkillStats     map[string]SkillStat     `json:"skill_stats"`
	PrimarySkills  []string                 `json:"primary_skills"`
	DateStats      DateStats                `json:"date_stats"`
}

// Analyze aggregates records. Error records are excluded. now anchors the
// recent-activity window.
func Analyze(records []Record, now time.Time) Analysis {
	res := Analysis{
		ExtensionStats: map[string]ExtensionStat{},
		SkillStats:     map[string]SkillStat{},
		PrimarySkills:  []string{},
		DateStats: DateStats{
			Created:  []MonthBucket{},
			Modified: []MonthBucket{},
		},
	}

	created := map[string][]string{}
	modified := map[string][]string{}

	for idx := range records {
		rec := &records[idx]
		if rec.Failed() {
			continue
		}

		res.BasicStats.TotalFiles++
		res.BasicStats.TotalSize += rec.FileSize
		res.BasicStats.TotalLines += rec.LineCount
		res.BasicStats.TotalWords += rec.WordCount
		res.BasicStats.TotalCharacters += rec.CharacterCount

		ext := rec.FileExtension
		if ext == "" {
			ext = NoExtension
		}

		es := res.ExtensionStats[ext]
		es.Count++
		es.TotalSize += rec.FileSize
		es.Category = CategoryOf(rec.FileExtension)
		res.ExtensionStats[ext] = es

		if t, ok := rec.Created(); ok {
			month := t.Format(monthLayout)
			created[month] = append(created[month], rec.Filename)
		}

		if t, ok := rec.Modified(); ok {
			month := t.Format(monthLayout)
			modified[month] = append(modified[month], rec.Filename)

			if now.Sub(t) <= recentWindow {
				res.DateStats.RecentActivity++
			}
		}
	}

	total := res.BasicStats.TotalFiles
	if total == 0 {
		return res
	}

	for ext, es := range res.ExtensionStats {
		es.AverageSize = float64(es.TotalSize) / float64(es.Count)
		es.Percentage = percent(es.Count, total)
		res.ExtensionStats[ext] = es

		ss := res.SkillStats[es.Category]
		ss.FileCount += es.Count
		ss.TotalSize += es.TotalSize
		ss.Extensions = append(ss.Extensions, ext)
		res.SkillStats[es.Category] = ss
	}

	categories := make([]string, 0, len(res.SkillStats))

	for cat, ss := range res.SkillStats {
		ss.Percentage = percent(ss.FileCount, total)
		sort.Strings(ss.Extensions)
		res.SkillStats[cat] = ss
		categories = append(categories, cat)
	}

	slices.SortFunc(categories, func(a, b string) int {
		if c := cmp.Compare(res.SkillStats[b].FileCount, res.SkillStats[a].FileCount); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})

	for _, cat := range categories[:min(primarySkillCount, len(categories))] {
		ss := res.SkillStats[cat]
		ss.Primary = true
		res.SkillStats[cat] = ss
		res.PrimarySkills = append(res.PrimarySkills, cat)
	}

	res.DateStats.Created = buckets(created)
	res.DateStats.Modified = buckets(modified)

	res.DateStats.ActivityLevel = ActivityModerate
	if float64(res.DateStats.RecentActivity) > highActivityRatio*float64(total) {
		res.DateStats.ActivityLevel = ActivityHigh
	}

	return res
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * percentScale
}

// buckets orders months newest first with file names sorted.
func buckets(byMonth map[string][]string) []MonthBucket {
	out := make([]MonthBucket, 0, len(byMonth))

	for month, files := range byMonth {
		sort.Strings(files)
		out = append(out, MonthBucket{Month: month, Files: files})
	}

	slices.SortFunc(out, func(a, b MonthBucket) int {
		return cmp.Compare(b.Month, a.Month)
	})

	return out
}
