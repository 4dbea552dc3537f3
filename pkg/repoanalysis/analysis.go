// Package repoanalysis ranks extracted repositories and derives per-project
// insights about the user's role in each.
package repoanalysis

import (
	"slices"
	"time"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/imports"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
)

// ProjectInsight is the analysis of one successful repository.
type ProjectInsight struct {
	Name              string         `json:"repository_name"`
	ImportanceRank    int            `json:"importance_rank"`
	ImportanceScore   float64        `json:"importance_score"`
	Signals           Signals        `json:"normalized_signals"`
	UserCommits       int            `json:"user_commits"`
	UserLinesAdded    int            `json:"user_lines_added"`
	UserLinesDeleted  int            `json:"user_lines_deleted"`
	UserFilesModified int            `json:"user_files_modified"`
	Contribution      Contribution   `json:"contribution"`
	Collaboration     Collaboration  `json:"collaboration"`
	Testing           Testing        `json:"testing"`
	Role              string         `json:"role"`
	Imports           []imports.Stat `json:"imports"`
	DateRange         DateRange      `json:"date_range"`
}

// DateRange is a repository's span of user activity.
type DateRange struct {
	Name         string    `json:"repository_name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
}

// ProjectAnalysis is the repository part of an analysis result.
type ProjectAnalysis struct {
	Insights []ProjectInsight `json:"analyzed_insights"`
	Timeline []DateRange      `json:"timeline"`
	Imports  []imports.Stat   `json:"global_imports"`
	Failed   []string         `json:"failed_repositories,omitempty"`
}

// Analyze ranks the records and builds one insight per successful record,
// in rank order.
func Analyze(records []repoextract.Record) ProjectAnalysis {
	pa := ProjectAnalysis{
		Insights: []ProjectInsight{},
		Timeline: []DateRange{},
	}

	for i := range records {
		if !records[i].OK() {
			pa.Failed = append(pa.Failed, records[i].Name)
		}
	}

	imp := imports.Extract(records)
	pa.Imports = imp.Global

	byRepo := make(map[string][]imports.Stat, len(imp.PerRepo))
	for _, ri := range imp.PerRepo {
		byRepo[ri.Path] = ri.Imports
	}

	for _, r := range Rank(records) {
		rec := r.Record
		pa.Insights = append(pa.Insights, ProjectInsight{
			Name:              rec.Name,
			ImportanceRank:    r.Rank,
			ImportanceScore:   r.Score,
			Signals:           r.Signals,
			UserCommits:       rec.UserCommitCount(),
			UserLinesAdded:    rec.UserLinesAdded,
			UserLinesDeleted:  rec.UserLinesDeleted,
			UserFilesModified: rec.UserFilesModified,
			Contribution:      ContributionOf(rec),
			Collaboration:     CollaborationOf(rec),
			Testing:           TestingOf(rec),
			Role:              InferRole(rec.UserLinesAdded, rec.UserLinesDeleted, rec.UserFilesModified),
			Imports:           byRepo[rec.Path],
			DateRange:         dateRange(rec),
		})
	}

	pa.Timeline = Timeline(records)

	return pa
}

// Timeline lists the date ranges of successful repositories with user
// commits, latest start first. Equal starts keep input order.
func Timeline(records []repoextract.Record) []DateRange {
	out := []DateRange{}

	for i := range records {
		rec := &records[i]
		if rec.OK() && rec.UserCommitCount() > 0 {
			out = append(out, dateRange(rec))
		}
	}

	slices.SortStableFunc(out, func(a, b DateRange) int {
		return b.StartDate.Compare(a.StartDate)
	})

	return out
}

func dateRange(rec *repoextract.Record) DateRange {
	return DateRange{
		Name:         rec.Name,
		StartDate:    rec.StartDate,
		EndDate:      rec.EndDate,
		DurationDays: rec.DurationDays,
	}
}
