package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/topics"
)

var _ Store = (*SQLiteStore)(nil)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is a Store backed by SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at dsn with foreign keys enforced on every
// pooled connection. The schema is not applied; call Migrate.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite3", dsn+sep+"_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	pingErr := db.Ping()
	if pingErr != nil {
		db.Close()

		return nil, fmt.Errorf("open sqlite %s: %w", dsn, pingErr)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Migrate creates any missing tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// inTx runs fn in its own transaction.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	fnErr := fn(tx)
	if fnErr != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return errors.Join(fnErr, rbErr)
		}

		return fnErr
	}

	commitErr := tx.Commit()
	if commitErr != nil {
		return fmt.Errorf("commit: %w", commitErr)
	}

	return nil
}

// CreateAnalysis inserts the analysis row.
func (s *SQLiteStore) CreateAnalysis(ctx context.Context, id, inputPath string, createdAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analyses (id, input_path, created_at) VALUES (?, ?, ?)`,
			id, inputPath, createdAt.UTC())
		if err != nil {
			return fmt.Errorf("insert analysis %s: %w", id, err)
		}

		return nil
	})
}

// InitResultRows creates empty results and tracked_data rows for id.
func (s *SQLiteStore) InitResultRows(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"results", "tracked_data"} {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO `+table+` (analysis_id, updated_at) VALUES (?, ?)`,
				id, s.now().UTC())
			if err != nil {
				return fmt.Errorf("init %s row for %s: %w", table, id, err)
			}
		}

		return nil
	})
}

// updateColumns sets JSON-encoded columns on the row of table keyed by id.
func (s *SQLiteStore) updateColumns(ctx context.Context, table, id string, cols []string, values []any) error {
	query := "UPDATE " + table + " SET "
	args := make([]any, 0, len(values)+2)

	for i, col := range cols {
		query += col + " = ?, "
		args = append(args, values[i])
	}

	query += "updated_at = ? WHERE analysis_id = ?"
	args = append(args, s.now().UTC(), id)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update %s for %s: %w", table, id, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update %s for %s: %w", table, id, err)
		}

		if n == 0 {
			return fmt.Errorf("%w: %s for %s", ErrNoResultRow, table, id)
		}

		return nil
	})
}

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode fragment: %w", err)
	}

	return string(raw), nil
}

func (s *SQLiteStore) saveJSON(ctx context.Context, table, column, id string, v any) error {
	doc, err := encode(v)
	if err != nil {
		return err
	}

	return s.updateColumns(ctx, table, id, []string{column}, []any{doc})
}

// SaveMetadataAnalysis stores the metadata rollups.
func (s *SQLiteStore) SaveMetadataAnalysis(ctx context.Context, id string, a metadata.Analysis) error {
	return s.saveJSON(ctx, "results", "metadata_analysis", id, a)
}

// SaveTextAnalysis stores the topic vectors.
func (s *SQLiteStore) SaveTextAnalysis(ctx context.Context, id string, m topics.Model) error {
	return s.saveJSON(ctx, "results", "text_analysis", id, m)
}

// SaveRepositoryAnalysis stores the project analysis.
func (s *SQLiteStore) SaveRepositoryAnalysis(ctx context.Context, id string, p repoanalysis.ProjectAnalysis) error {
	return s.saveJSON(ctx, "results", "repository_analysis", id, p)
}

// SaveTrackedData stores per-file metadata and the final bag of words.
func (s *SQLiteStore) SaveTrackedData(ctx context.Context, id string, d TrackedData) error {
	records, err := encode(d.MetadataResults)
	if err != nil {
		return err
	}

	bow, err := encode(d.FinalBoW)
	if err != nil {
		return err
	}

	return s.updateColumns(ctx, "tracked_data", id,
		[]string{"metadata_results", "final_bow"}, []any{records, bow})
}

// SaveSummary stores the generated summary text.
func (s *SQLiteStore) SaveSummary(ctx context.Context, id, summary string) error {
	return s.updateColumns(ctx, "results", id, []string{"medium_summary"}, []any{summary})
}

// Load reads an analysis and whichever fragments exist for it.
func (s *SQLiteStore) Load(ctx context.Context, id string) (Snapshot, error) {
	snap := Snapshot{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT input_path, created_at FROM analyses WHERE id = ?`, id,
	).Scan(&snap.InputPath, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}

	if err != nil {
		return Snapshot{}, fmt.Errorf("load analysis %s: %w", id, err)
	}

	var (
		meta, text, repo, summary sql.NullString
		records, bow              sql.NullString
	)

	err = s.db.QueryRowContext(ctx,
		`SELECT metadata_analysis, text_analysis, repository_analysis, medium_summary
		 FROM results WHERE analysis_id = ?`, id,
	).Scan(&meta, &text, &repo, &summary)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("load results %s: %w", id, err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT metadata_results, final_bow FROM tracked_data WHERE analysis_id = ?`, id,
	).Scan(&records, &bow)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("load tracked data %s: %w", id, err)
	}

	snap.MetadataAnalysis = nullBytes(meta)
	snap.TextAnalysis = nullBytes(text)
	snap.RepositoryAnalysis = nullBytes(repo)
	snap.MediumSummary = summary.String
	snap.MetadataResults = nullBytes(records)
	snap.FinalBoW = nullBytes(bow)

	return snap, nil
}

func nullBytes(ns sql.NullString) []byte {
	if !ns.Valid {
		return nil
	}

	return []byte(ns.String)
}
