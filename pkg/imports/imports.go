// Package imports extracts third-party package usage from the source of
// modified files and tracks when each package was first and last touched.
package imports

import (
	"cmp"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
)

const hoursPerDay = 24

// Noise lists generic names that say nothing about the stack.
var Noise = map[string]bool{
	"app": true, "common": true, "components": true, "config": true,
	"constants": true, "core": true, "helpers": true, "index": true,
	"lib": true, "main": true, "models": true, "shared": true,
	"src": true, "test": true, "tests": true, "types": true,
	"util": true, "utils": true,
}

// File is the import set detected in one source file.
type File struct {
	Imports []string
	Lang    string
}

// Parse extracts the normalized, de-duplicated, noise-free import names of
// src from its syntax tree. Files of unknown language yield an empty File.
func Parse(filename, src string) File {
	lang, ok := languageByExt[strings.ToLower(path.Ext(filename))]
	if !ok || src == "" {
		return File{}
	}

	seen := map[string]bool{}
	f := File{Lang: lang.name}

	for _, name := range extract(lang, []byte(src)) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || Noise[name] || seen[name] {
			continue
		}

		seen[name] = true
		f.Imports = append(f.Imports, name)
	}

	slices.Sort(f.Imports)

	return f
}

// Stat tracks one import across commits.
type Stat struct {
	Name         string    `json:"name"`
	Repository   string    `json:"repository,omitempty"`
	Language     string    `json:"language"`
	Frequency    int       `json:"frequency"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
}

// RepoImports holds the imports of one repository.
type RepoImports struct {
	Repository string    `json:"repository"`
	Path       string    `json:"repository_path"`
	StartDate  time.Time `json:"start_date"`
	Imports    []Stat    `json:"imports"`
}

// Result is the import summary of a run.
type Result struct {
	PerRepo []RepoImports `json:"per_repository"`
	Global  []Stat        `json:"global"`
}

// Extract summarizes imports over the user commits of every successful
// record. Repositories, each repository's list and the global list are
// ordered by start date, newest first; equal starts keep input order.
func Extract(records []repoextract.Record) Result {
	res := Result{PerRepo: []RepoImports{}, Global: []Stat{}}

	for i := range records {
		rec := &records[i]
		if !rec.OK() {
			continue
		}

		stats := extractRepo(rec)
		res.PerRepo = append(res.PerRepo, RepoImports{
			Repository: rec.Name,
			Path:       rec.Path,
			StartDate:  rec.StartDate,
			Imports:    stats,
		})
		res.Global = append(res.Global, stats...)
	}

	slices.SortStableFunc(res.PerRepo, func(a, b RepoImports) int {
		return b.StartDate.Compare(a.StartDate)
	})
	sortByStart(res.Global)

	return res
}

func extractRepo(rec *repoextract.Record) []Stat {
	byName := map[string]*Stat{}

	for _, c := range rec.UserCommits {
		for _, mf := range c.ModifiedFiles {
			if mf.SourceAfterChange == "" {
				continue
			}

			f := Parse(mf.Filename, mf.SourceAfterChange)

			for _, name := range f.Imports {
				st := byName[name]
				if st == nil {
					st = &Stat{Name: name, Repository: rec.Name, Language: f.Lang, StartDate: c.Date, EndDate: c.Date}
					byName[name] = st
				}

				st.Frequency++

				if c.Date.Before(st.StartDate) {
					st.StartDate = c.Date
				}

				if c.Date.After(st.EndDate) {
					st.EndDate = c.Date
				}
			}
		}
	}

	out := make([]Stat, 0, len(byName))

	for _, st := range byName {
		st.DurationDays = int(st.EndDate.Sub(st.StartDate).Hours() / hoursPerDay)
		out = append(out, *st)
	}

	sortByStart(out)

	return out
}

func sortByStart(stats []Stat) {
	slices.SortStableFunc(stats, func(a, b Stat) int {
		if c := b.StartDate.Compare(a.StartDate); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return cmp.Compare(a.Repository, b.Repository)
	})
}
