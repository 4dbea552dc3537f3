package repoextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/cache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/identity"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/textutil"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/units"
)

// Defaults.
const (
	DefaultMaxSourceSize = units.MiB
	DefaultMaxTries      = 3

	tempPattern = "artifactminer-repo-*"
	hoursPerDay = 24
)

// Extractor walks the history of embedded repositories.
type Extractor struct {
	matcher       *identity.Matcher
	logger        *slog.Logger
	metrics       *observability.PipelineMetrics
	tempDir       string
	maxSourceSize int
	maxTries      uint
	blobCacheSize int64
	backOff       func() backoff.BackOff
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMatcher sets the target-user matcher. Without one no commit is
// attributed to the user.
func WithMatcher(m *identity.Matcher) Option {
	return func(e *Extractor) { e.matcher = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithTempDir sets the parent directory for per-repository temp trees.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tempDir = dir }
}

// WithMaxSourceSize bounds the post-change source kept per modified file.
func WithMaxSourceSize(n int) Option {
	return func(e *Extractor) { e.maxSourceSize = n }
}

// WithMaxTries bounds the number of history walks per repository.
func WithMaxTries(n uint) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTries = n
		}
	}
}

// WithBlobCacheSize sets the byte bound of the per-repository blob cache.
func WithBlobCacheSize(n int64) Option {
	return func(e *Extractor) { e.blobCacheSize = n }
}

// WithBackOff overrides the retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(e *Extractor) { e.backOff = newBackOff }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		matcher:       identity.NewMatcher(nil, false),
		maxSourceSize: DefaultMaxSourceSize,
		maxTries:      DefaultMaxTries,
		blobCacheSize: cache.DefaultBlobCacheSize,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// ExtractAll extracts every repository head in order. A failing repository
// yields a record with status "error"; the others still run.
func (e *Extractor) ExtractAll(ctx context.Context, tree *filetree.Tree, payloads filetree.Payloads, heads []filetree.NodeID) []Record {
	defer e.metrics.TimeStage(ctx, "repo_extract")()

	out := make([]Record, 0, len(heads))

	for _, head := range heads {
		out = append(out, e.Extract(ctx, tree, payloads, head))
	}

	return out
}

// Extract rebuilds the repository at head in a temp directory, walks its
// history and removes the temp directory before returning.
func (e *Extractor) Extract(ctx context.Context, tree *filetree.Tree, payloads filetree.Payloads, head filetree.NodeID) Record {
	n := tree.Node(head)
	rec := Record{
		Name:        n.Name,
		Path:        n.Path,
		Status:      StatusOK,
		Context:     RepoContext{Authors: map[string]*AuthorStats{}},
		UserCommits: []CommitRecord{},
	}

	err := e.extract(ctx, tree, payloads, head, &rec)
	if err != nil {
		e.logger.WarnContext(ctx, "repository extraction failed", "repo", rec.Path, "error", err)

		rec.Status = StatusError
		rec.Error = err.Error()
	}

	e.metrics.RepoExtracted(ctx, rec.Status)

	return rec
}

func (e *Extractor) extract(ctx context.Context, tree *filetree.Tree, payloads filetree.Payloads, head filetree.NodeID, rec *Record) error {
	tmp, err := os.MkdirTemp(e.tempDir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	defer func() {
		rmErr := os.RemoveAll(tmp)
		if rmErr != nil {
			e.logger.WarnContext(ctx, "remove temp repository", "dir", tmp, "error", rmErr)
		}
	}()

	gitDir, err := materialize(tree, payloads, head, tmp)
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}

	// Retries share the blob cache; blob ids are content hashes.
	blobs := cache.NewBlobCache(e.blobCacheSize)

	hist, err := backoff.Retry(ctx, func() (*history, error) {
		return e.walk(gitDir, blobs)
	},
		backoff.WithBackOff(e.backOff()),
		backoff.WithMaxTries(e.maxTries),
		backoff.WithNotify(func(walkErr error, next time.Duration) {
			e.logger.DebugContext(ctx, "retrying history walk", "repo", rec.Path, "error", walkErr, "backoff", next)
		}),
	)
	if err != nil {
		return err
	}

	hist.fill(rec)

	stats := blobs.Stats()
	e.logger.DebugContext(ctx, "repository extracted",
		"repo", rec.Path, "commits", rec.Context.TotalCommits, "user_commits", len(rec.UserCommits),
		"blob_hit_rate", stats.HitRate(), "blob_bytes", stats.Size)

	return nil
}

// walk reads the full history once.
func (e *Extractor) walk(gitDir string, blobs *cache.BlobCache) (*history, error) {
	repo, err := gitlib.OpenRepository(gitDir)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	head, err := repo.Head()
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	iter, err := repo.Log()
	if err != nil {
		return nil, err
	}

	hist := newHistory(head.String())

	err = iter.ForEach(func(c *gitlib.Commit) error {
		files, filesErr := e.modifiedFiles(repo, blobs, c)
		if filesErr != nil {
			return fmt.Errorf("commit %s: %w", c.Hash(), filesErr)
		}

		author := c.Author()
		hist.add(CommitRecord{
			Hash:          c.Hash().String(),
			AuthorName:    author.Name,
			AuthorEmail:   author.Email,
			Date:          author.When,
			Message:       c.Message(),
			ModifiedFiles: files,
		}, e.matcher.Matches(author.Email))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return hist, nil
}

func (e *Extractor) modifiedFiles(repo *gitlib.Repository, blobs *cache.BlobCache, c *gitlib.Commit) ([]ModifiedFile, error) {
	changes, err := repo.Changes(c)
	if err != nil {
		return nil, err
	}

	files := make([]ModifiedFile, 0, len(changes))

	for _, ch := range changes {
		oldData, oldErr := loadBlob(repo, blobs, ch.OldHash)
		if oldErr != nil {
			return nil, oldErr
		}

		newData, newErr := loadBlob(repo, blobs, ch.NewHash)
		if newErr != nil {
			return nil, newErr
		}

		mf := ModifiedFile{
			Filename:   path.Base(ch.Path()),
			OldPath:    ch.OldPath,
			NewPath:    ch.NewPath,
			ChangeKind: ch.Kind.String(),
		}

		if !textutil.IsBinary(oldData) && !textutil.IsBinary(newData) {
			mf.AddedLines, mf.DeletedLines = gitlib.LineStats(oldData, newData)

			if ch.Kind != gitlib.ChangeDelete && len(newData) <= e.maxSourceSize {
				mf.SourceAfterChange, _ = textutil.Decode(newData)
			}
		}

		files = append(files, mf)
	}

	return files, nil
}

func loadBlob(repo *gitlib.Repository, blobs *cache.BlobCache, hash gitlib.Hash) ([]byte, error) {
	if hash.IsZero() {
		return nil, nil
	}

	return blobs.GetOrLoad(hash, repo.LookupBlob)
}

// history accumulates repository-wide and user-attributed totals.
type history struct {
	head    string
	ctx     RepoContext
	commits []CommitRecord
	added   int
	deleted int
	files   int
}

func newHistory(head string) *history {
	return &history{
		head:    head,
		ctx:     RepoContext{Authors: map[string]*AuthorStats{}},
		commits: []CommitRecord{},
	}
}

func (h *history) add(c CommitRecord, isUser bool) {
	key := identity.Canonicalize(c.AuthorEmail)

	stats := h.ctx.Authors[key]
	if stats == nil {
		stats = &AuthorStats{}
		h.ctx.Authors[key] = stats
	}

	stats.Commits++
	stats.FilesModified += len(c.ModifiedFiles)

	h.ctx.TotalCommits++

	for _, f := range c.ModifiedFiles {
		stats.LinesAdded += f.AddedLines
		stats.LinesDeleted += f.DeletedLines
		h.ctx.TotalLinesAdded += f.AddedLines
		h.ctx.TotalLinesDeleted += f.DeletedLines
	}

	if !isUser {
		return
	}

	h.commits = append(h.commits, c)
	h.files += len(c.ModifiedFiles)

	for _, f := range c.ModifiedFiles {
		h.added += f.AddedLines
		h.deleted += f.DeletedLines
	}
}

func (h *history) fill(rec *Record) {
	h.ctx.TotalContributors = len(h.ctx.Authors)

	rec.HeadCommit = h.head
	rec.Context = h.ctx
	rec.UserCommits = h.commits
	rec.UserLinesAdded = h.added
	rec.UserLinesDeleted = h.deleted
	rec.UserFilesModified = h.files

	for i, c := range h.commits {
		if i == 0 || c.Date.Before(rec.StartDate) {
			rec.StartDate = c.Date
		}

		if i == 0 || c.Date.After(rec.EndDate) {
			rec.EndDate = c.Date
		}
	}

	if len(h.commits) > 0 {
		rec.UserKey = identity.Canonicalize(h.commits[0].AuthorEmail)
		rec.DurationDays = durationDays(rec.StartDate, rec.EndDate)
	}
}

// durationDays returns the number of whole days between start and end.
func durationDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / hoursPerDay)
}
