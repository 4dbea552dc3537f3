// Package assembler distributes an analysis result across the store.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/store"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/topics"
)

// AnalysisResult is everything one run produced.
type AnalysisResult struct {
	ID               string                       `json:"analysis_id"`
	InputPath        string                       `json:"input_path"`
	MetadataResults  []metadata.Record            `json:"metadata_results"`
	MetadataAnalysis metadata.Analysis            `json:"metadata_analysis"`
	Topics           topics.Model                 `json:"topics"`
	FinalBoW         bowcache.Artifact            `json:"final_bow"`
	ProjectAnalysis  repoanalysis.ProjectAnalysis `json:"project_analysis"`
	MediumSummary    string                       `json:"medium_summary,omitempty"`
}

// Assembler saves AnalysisResults.
type Assembler struct {
	store  store.Store
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// WithClock sets the clock used for the analysis timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Assembler over s.
func New(s store.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:  s,
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type fragmentSave struct {
	name string
	fn   func() error
}

// Assemble assigns res a fresh identifier and saves each fragment
// independently. When the analysis row cannot be created it returns an empty
// identifier. Otherwise it returns the identifier together with the joined
// errors of any fragment saves that failed. An empty summary is not saved.
func (a *Assembler) Assemble(ctx context.Context, res *AnalysisResult) (string, error) {
	id := a.newID()

	err := a.store.CreateAnalysis(ctx, id, res.InputPath, a.now())
	if err != nil {
		return "", fmt.Errorf("create analysis: %w", err)
	}

	res.ID = id

	saves := []fragmentSave{
		{"result rows", func() error { return a.store.InitResultRows(ctx, id) }},
		{"metadata analysis", func() error { return a.store.SaveMetadataAnalysis(ctx, id, res.MetadataAnalysis) }},
		{"text analysis", func() error { return a.store.SaveTextAnalysis(ctx, id, res.Topics) }},
		{"repository analysis", func() error { return a.store.SaveRepositoryAnalysis(ctx, id, res.ProjectAnalysis) }},
		{"tracked data", func() error {
			return a.store.SaveTrackedData(ctx, id, store.TrackedData{
				MetadataResults: res.MetadataResults,
				FinalBoW:        res.FinalBoW,
			})
		}},
	}

	if res.MediumSummary != "" {
		saves = append(saves, fragmentSave{"summary", func() error { return a.store.SaveSummary(ctx, id, res.MediumSummary) }})
	}

	var errs []error

	for _, s := range saves {
		saveErr := s.fn()
		if saveErr != nil {
			a.logger.WarnContext(ctx, "save failed", "analysis", id, "fragment", s.name, "error", saveErr)
			errs = append(errs, fmt.Errorf("save %s: %w", s.name, saveErr))
		}
	}

	return id, errors.Join(errs...)
}
