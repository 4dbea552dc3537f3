package repoanalysis

import (
	"slices"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
)

// EqualRangeScore is the normalized value of a signal whose minimum equals
// its maximum.
const EqualRangeScore = 0.5

const numSignals = 3

// Signals are the normalized ranking inputs of one repository.
type Signals struct {
	Commits      float64 `json:"commits"`
	LinesAdded   float64 `json:"lines_added"`
	DurationDays float64 `json:"duration_days"`
}

// Ranked is a repository with its importance score.
type Ranked struct {
	Record  *repoextract.Record
	Rank    int
	Score   float64
	Signals Signals
}

// Rank scores the successful records and orders them by descending
// importance. Equal scores keep input order.
func Rank(records []repoextract.Record) []Ranked {
	var ok []*repoextract.Record

	for i := range records {
		if records[i].OK() {
			ok = append(ok, &records[i])
		}
	}

	commits := make([]float64, len(ok))
	added := make([]float64, len(ok))
	days := make([]float64, len(ok))

	for i, r := range ok {
		commits[i] = float64(r.UserCommitCount())
		added[i] = float64(r.UserLinesAdded)
		days[i] = float64(r.DurationDays)
	}

	commits = Normalize(commits)
	added = Normalize(added)
	days = Normalize(days)

	out := make([]Ranked, len(ok))

	for i, r := range ok {
		s := Signals{Commits: commits[i], LinesAdded: added[i], DurationDays: days[i]}
		out[i] = Ranked{
			Record:  r,
			Signals: s,
			Score:   (s.Commits + s.LinesAdded + s.DurationDays) / numSignals,
		}
	}

	slices.SortStableFunc(out, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	for i := range out {
		out[i].Rank = i + 1
	}

	return out
}

// Normalize min-max scales values into [0, 1]. When every value is equal
// each maps to EqualRangeScore.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := slices.Min(values), slices.Max(values)

	for i, v := range values {
		if hi == lo {
			out[i] = EqualRangeScore

			continue
		}

		out[i] = (v - lo) / (hi - lo)
	}

	return out
}
