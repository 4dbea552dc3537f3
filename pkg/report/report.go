// Package report renders analysis results for the terminal and as HTML charts.
package report

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/analysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/imports"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/safeconv"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/topics"
)

const (
	dateLayout    = "2006-01-02"
	topImports    = 10
	percentFormat = "%.1f%%"
)

var heading = color.New(color.FgCyan, color.Bold)

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	return tbl
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	heading.Fprintln(w, title)
}

// Text writes a human-readable report of res.
func Text(w io.Writer, res *analysis.Result) {
	if res.ID != "" {
		heading.Fprintf(w, "Analysis %s\n", res.ID)
	} else {
		heading.Fprintln(w, "Analysis (not stored)")
	}

	fmt.Fprintf(w, "Input: %s\n", res.InputPath)

	if res.CacheHit {
		fmt.Fprintln(w, "Bag of words: reused from cache")
	}

	Files(w, res.MetadataAnalysis, res.Dropped)
	Repositories(w, res.ProjectAnalysis)
	Imports(w, res.ProjectAnalysis.Imports)
	Topics(w, res.Topics)

	if res.MediumSummary != "" {
		section(w, "Summary")
		fmt.Fprintln(w, res.MediumSummary)
	}
}

// Files writes corpus totals and the skill breakdown.
func Files(w io.Writer, a metadata.Analysis, dropped int) {
	section(w, "Files")

	b := a.BasicStats
	fmt.Fprintf(w, "%d files, %s, %s lines, %s words (%d dropped)\n",
		b.TotalFiles, humanize.IBytes(safeconv.SizeToUint64(b.TotalSize)),
		humanize.Comma(int64(b.TotalLines)), humanize.Comma(int64(b.TotalWords)), dropped)

	if a.DateStats.ActivityLevel != "" {
		fmt.Fprintf(w, "Recent activity: %d files (%s)\n", a.DateStats.RecentActivity, a.DateStats.ActivityLevel)
	}

	if len(a.SkillStats) == 0 {
		return
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Category", "Files", "Size", "Share", "Extensions", "Primary"})

	for _, name := range slices.Sorted(maps.Keys(a.SkillStats)) {
		s := a.SkillStats[name]

		primary := ""
		if s.Primary {
			primary = "yes"
		}

		tbl.AppendRow(table.Row{
			name, s.FileCount, humanize.IBytes(safeconv.SizeToUint64(s.TotalSize)),
			fmt.Sprintf(percentFormat, s.Percentage), strings.Join(s.Extensions, " "), primary,
		})
	}

	tbl.Render()
}

// Repositories writes the ranking table and the timeline.
func Repositories(w io.Writer, p repoanalysis.ProjectAnalysis) {
	if len(p.Insights) == 0 && len(p.Failed) == 0 {
		return
	}

	section(w, "Repositories")

	if len(p.Insights) > 0 {
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"#", "Repository", "Score", "Commits", "+Lines", "-Lines", "Role", "Contribution", "Tests"})

		for _, in := range p.Insights {
			tbl.AppendRow(table.Row{
				in.ImportanceRank, in.Name, fmt.Sprintf("%.2f", in.ImportanceScore),
				in.UserCommits, humanize.Comma(int64(in.UserLinesAdded)), humanize.Comma(int64(in.UserLinesDeleted)),
				in.Role, fmt.Sprintf("%s (%d/%d)", in.Contribution.Level, in.Contribution.Rank, in.Contribution.TotalAuthors),
				fmt.Sprintf(percentFormat, in.Testing.TestingPercentageFiles),
			})
		}

		tbl.Render()
	}

	if len(p.Timeline) > 0 {
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"Repository", "Start", "End", "Days"})

		for _, d := range p.Timeline {
			tbl.AppendRow(table.Row{d.Name, d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout), d.DurationDays})
		}

		tbl.Render()
	}

	for _, name := range p.Failed {
		color.New(color.FgRed).Fprintf(w, "failed: %s\n", name)
	}
}

// Imports writes the most frequently imported packages.
func Imports(w io.Writer, stats []imports.Stat) {
	if len(stats) == 0 {
		return
	}

	section(w, "Top imports")

	byFreq := slices.Clone(stats)
	slices.SortStableFunc(byFreq, func(a, b imports.Stat) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Package", "Language", "Uses", "First used", "Days"})

	for _, s := range byFreq[:min(topImports, len(byFreq))] {
		tbl.AppendRow(table.Row{s.Name, s.Language, s.Frequency, s.StartDate.Format(dateLayout), s.DurationDays})
	}

	tbl.Render()
}

// Topics writes the heaviest terms of each topic.
func Topics(w io.Writer, m topics.Model) {
	if len(m.TopicTerms) == 0 {
		return
	}

	section(w, "Topics")

	for k, terms := range m.TopicTerms {
		words := make([]string, len(terms))
		for i, t := range terms {
			words[i] = t.Term
		}

		fmt.Fprintf(w, "%2d. %s\n", k+1, strings.Join(words, ", "))
	}
}
