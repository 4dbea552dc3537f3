package metadata_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
)

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	res := metadata.Analyze(nil, time.Now())

	assert.Zero(t, res.BasicStats)
	assert.NotNil(t, res.ExtensionStats)
	assert.Empty(t, res.ExtensionStats)
	assert.NotNil(t, res.SkillStats)
	assert.NotNil(t, res.PrimarySkills)
	assert.NotNil(t, res.DateStats.Created)
	assert.NotNil(t, res.DateStats.Modified)
	assert.Zero(t, res.DateStats.RecentActivity)
}

func TestAnalyze_Rollups(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	recent := now.Add(-48 * time.Hour).Format(metadata.DateLayout)
	old := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Format(metadata.DateLayout)

	records := []metadata.Record{
		{Filename: "b.py", FileExtension: ".py", FileSize: 100, LineCount: 10, WordCount: 20, CharacterCount: 90, CreationDate: old, LastModifiedDate: recent},
		{Filename: "a.py", FileExtension: ".py", FileSize: 300, LineCount: 30, WordCount: 60, CharacterCount: 270, CreationDate: old, LastModifiedDate: recent},
		{Filename: "notes.md", FileExtension: ".md", FileSize: 50, LineCount: 5, WordCount: 9, CharacterCount: 48, CreationDate: metadata.UnknownDate, LastModifiedDate: old},
		{Filename: "style.css", FileExtension: ".css", FileSize: 10, CreationDate: metadata.UnknownDate, LastModifiedDate: metadata.UnknownDate},
		{Filename: "Makefile", FileSize: 40, CreationDate: metadata.UnknownDate, LastModifiedDate: metadata.UnknownDate},
		{Filename: "data.csv", FileExtension: ".csv", FileSize: 0, CreationDate: metadata.UnknownDate, LastModifiedDate: metadata.UnknownDate},
		{Filename: "broken.bin", Error: "boom"},
	}

	res := metadata.Analyze(records, now)

	assert.Equal(t, metadata.BasicStats{
		TotalFiles: 6, TotalSize: 500, TotalLines: 45, TotalWords: 89, TotalCharacters: 408,
	}, res.BasicStats)

	py := res.ExtensionStats[".py"]
	assert.Equal(t, 2, py.Count)
	assert.Equal(t, int64(400), py.TotalSize)
	assert.InDelta(t, 200.0, py.AverageSize, 1e-9)
	assert.Equal(t, metadata.CategoryProgramming, py.Category)
	assert.InDelta(t, 33.333, py.Percentage, 0.001)

	none := res.ExtensionStats[metadata.NoExtension]
	assert.Equal(t, metadata.CategoryOther, none.Category)

	assert.Equal(t, []string{
		metadata.CategoryProgramming, metadata.CategoryData, metadata.CategoryDocumentation,
	}, res.PrimarySkills)
	assert.True(t, res.SkillStats[metadata.CategoryProgramming].Primary)
	assert.False(t, res.SkillStats[metadata.CategoryWeb].Primary)
	assert.Equal(t, []string{".py"}, res.SkillStats[metadata.CategoryProgramming].Extensions)

	require.Len(t, res.DateStats.Modified, 2)
	assert.Equal(t, metadata.MonthBucket{Month: "2025-06", Files: []string{"a.py", "b.py"}}, res.DateStats.Modified[0])
	assert.Equal(t, "2024-01", res.DateStats.Modified[1].Month)

	require.Len(t, res.DateStats.Created, 1)
	assert.Equal(t, []string{"a.py", "b.py"}, res.DateStats.Created[0].Files)

	assert.Equal(t, 2, res.DateStats.RecentActivity)
	assert.Equal(t, metadata.ActivityHigh, res.DateStats.ActivityLevel)
}

func TestAnalyze_ModerateActivity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, -3, 0).Format(metadata.DateLayout)

	records := []metadata.Record{
		{Filename: "a.go", FileExtension: ".go", LastModifiedDate: now.Format(metadata.DateLayout)},
		{Filename: "b.go", FileExtension: ".go", LastModifiedDate: old},
		{Filename: "c.go", FileExtension: ".go", LastModifiedDate: old},
		{Filename: "d.go", FileExtension: ".go", LastModifiedDate: old},
	}

	res := metadata.Analyze(records, now)

	assert.Equal(t, 1, res.DateStats.RecentActivity)
	assert.Equal(t, metadata.ActivityModerate, res.DateStats.ActivityLevel)
	assert.Equal(t, []string{metadata.CategoryProgramming}, res.PrimarySkills)
}
