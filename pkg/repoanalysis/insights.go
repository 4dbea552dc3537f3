package repoanalysis

import (
	"strings"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
)

// Contribution levels.
const (
	LevelSole        = "Sole Contributor"
	LevelTop         = "Top Contributor"
	LevelMajor       = "Major Contributor"
	LevelSignificant = "Significant Contributor"
	LevelContributor = "Contributor"
	LevelNone        = "No Contribution"
)

// Roles.
const (
	RoleNone               = "No Activity Detected"
	RoleFeatureDeveloper   = "Feature Developer"
	RoleCodeRefiner        = "Code Refiner"
	RoleMaintainer         = "Maintainer"
	RoleGeneralContributor = "General Contributor"
)

const (
	percent = 100

	majorPercentile       = 75
	significantPercentile = 50

	featureShare  = 0.5
	refinerShare  = 0.4
	maintainShare = 0.4
)

// Contribution places the user among the repository's authors.
type Contribution struct {
	Rank         int     `json:"rank"`
	TotalAuthors int     `json:"total_authors"`
	Percentile   float64 `json:"percentile"`
	Level        string  `json:"level"`
}

// ContributionOf ranks the user by commit count; rank 1 is the most active.
// Authors with the same count share a rank. A user without commits is
// unranked (rank 0) with LevelNone.
func ContributionOf(rec *repoextract.Record) Contribution {
	total := len(rec.Context.Authors)
	user := rec.UserCommitCount()

	if user == 0 {
		return Contribution{TotalAuthors: total, Level: LevelNone}
	}

	rank := 1

	for key, a := range rec.Context.Authors {
		if key != rec.UserKey && a.Commits > user {
			rank++
		}
	}

	c := Contribution{Rank: rank, TotalAuthors: total}
	if total > 0 {
		c.Percentile = float64(total-rank) / float64(total) * percent
	}

	switch {
	case total <= 1:
		c.Level = LevelSole
	case rank == 1:
		c.Level = LevelTop
	case c.Percentile >= majorPercentile:
		c.Level = LevelMajor
	case c.Percentile >= significantPercentile:
		c.Level = LevelSignificant
	default:
		c.Level = LevelContributor
	}

	return c
}

// Collaboration describes how shared the repository is.
type Collaboration struct {
	IsCollaborative       bool    `json:"is_collaborative"`
	TotalContributors     int     `json:"total_contributors"`
	UserContributionShare float64 `json:"user_contribution_share"`
}

// CollaborationOf returns the collaboration summary of rec.
func CollaborationOf(rec *repoextract.Record) Collaboration {
	c := Collaboration{
		IsCollaborative:   rec.Context.TotalContributors > 1,
		TotalContributors: rec.Context.TotalContributors,
	}

	if rec.Context.TotalCommits > 0 {
		c.UserContributionShare = float64(rec.UserCommitCount()) / float64(rec.Context.TotalCommits) * percent
	}

	return c
}

// testMarkers are matched against the lower-cased, slash-prefixed path.
var testMarkers = []string{
	"test_", "_test", "/tests/", "/test/", "/__tests__/",
	"spec_", "_spec", ".spec", ".test.",
}

// IsTestFile reports whether path names a test file.
func IsTestFile(path string) bool {
	p := "/" + strings.ToLower(path)

	for _, m := range testMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}

	return false
}

// Testing summarizes the user's test-file activity.
type Testing struct {
	TestFiles              int     `json:"test_files_modified"`
	CodeFiles              int     `json:"code_files_modified"`
	TestLinesAdded         int     `json:"test_lines_added"`
	CodeLinesAdded         int     `json:"code_lines_added"`
	TestingPercentageFiles float64 `json:"testing_percentage_files"`
	TestingPercentageLines float64 `json:"testing_percentage_lines"`
	HasTests               bool    `json:"has_tests"`
}

// TestingOf classifies every file the user modified as test or code.
func TestingOf(rec *repoextract.Record) Testing {
	var t Testing

	for _, c := range rec.UserCommits {
		for _, f := range c.ModifiedFiles {
			if IsTestFile(f.Path()) {
				t.TestFiles++
				t.TestLinesAdded += f.AddedLines

				continue
			}

			t.CodeFiles++
			t.CodeLinesAdded += f.AddedLines
		}
	}

	if files := t.TestFiles + t.CodeFiles; files > 0 {
		t.TestingPercentageFiles = float64(t.TestFiles) / float64(files) * percent
	}

	if lines := t.TestLinesAdded + t.CodeLinesAdded; lines > 0 {
		t.TestingPercentageLines = float64(t.TestLinesAdded) / float64(lines) * percent
	}

	t.HasTests = t.TestFiles > 0

	return t
}

// InferRole labels the user's activity from lines added, lines deleted and
// files modified.
func InferRole(added, deleted, files int) string {
	total := float64(added + deleted + files)
	if total <= 0 {
		return RoleNone
	}

	switch {
	case float64(added)/total > featureShare:
		return RoleFeatureDeveloper
	case float64(deleted)/total > refinerShare:
		return RoleCodeRefiner
	case float64(files)/total > maintainShare:
		return RoleMaintainer
	default:
		return RoleGeneralContributor
	}
}
