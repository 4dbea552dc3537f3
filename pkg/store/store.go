// Package store persists analysis results in a relational database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/topics"
)

// Errors returned by stores.
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNoResultRow      = errors.New("result row not initialised")
)

// TrackedData is the raw material an analysis was derived from.
type TrackedData struct {
	MetadataResults []metadata.Record `json:"metadata_results"`
	FinalBoW        bowcache.Artifact `json:"final_bow"`
}

// Store saves the fragments of one analysis. Each call is its own
// transaction; callers must not assume atomicity across calls.
type Store interface {
	CreateAnalysis(ctx context.Context, id, inputPath string, createdAt time.Time) error
	InitResultRows(ctx context.Context, id string) error
	SaveMetadataAnalysis(ctx context.Context, id string, a metadata.Analysis) error
	SaveTextAnalysis(ctx context.Context, id string, m topics.Model) error
	SaveRepositoryAnalysis(ctx context.Context, id string, p repoanalysis.ProjectAnalysis) error
	SaveTrackedData(ctx context.Context, id string, d TrackedData) error
	SaveSummary(ctx context.Context, id, summary string) error
}

// Snapshot is a stored analysis with its JSON fragments. Fragments that were
// never saved are nil.
type Snapshot struct {
	ID                 string
	InputPath          string
	CreatedAt          time.Time
	MetadataAnalysis   []byte
	TextAnalysis       []byte
	RepositoryAnalysis []byte
	MediumSummary      string
	MetadataResults    []byte
	FinalBoW           []byte
}
