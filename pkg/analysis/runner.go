// Package analysis runs the full artifact-mining pipeline over one input path.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/assembler"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/identity"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/loader"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/metadata"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/store"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/summarizer"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/topics"
)

const tracerName = "artifactminer/analysis"

// Summarizer produces the prose summary of a run.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string, bundle any) (string, error)
}

// Result is a finished run. ID is empty when nothing was stored.
type Result struct {
	*assembler.AnalysisResult

	Repositories []repoextract.Record
	CacheHit     bool
	Dropped      int
}

// Runner wires the pipeline stages together.
type Runner struct {
	cfg        *config.Config
	loader     *loader.Loader
	classifier *classify.Processor
	meta       *metadata.Extractor
	proc       preprocess.Processor
	cache      *bowcache.Cache
	noCache    bool
	extractor  *repoextract.Extractor
	modeler    topics.Modeler
	summarizer Summarizer
	prompt     string
	store      store.Store
	logger     *slog.Logger
	metrics    *observability.PipelineMetrics
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(r *Runner) { r.metrics = pm }
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithStore persists results. Without a store nothing is saved.
func WithStore(s store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithSummarizer requests a summary with prompt. An empty prompt uses
// summarizer.DefaultPrompt.
func WithSummarizer(s Summarizer, prompt string) Option {
	return func(r *Runner) {
		r.summarizer = s
		r.prompt = prompt
	}
}

// WithPreprocessor replaces the default preprocessor.
func WithPreprocessor(p preprocess.Processor) Option {
	return func(r *Runner) { r.proc = p }
}

// WithCache replaces the cache opened from configuration.
func WithCache(c *bowcache.Cache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithoutCache disables the bag-of-words cache.
func WithoutCache() Option {
	return func(r *Runner) { r.noCache = true }
}

// WithModeler replaces the topic modeler.
func WithModeler(m topics.Modeler) Option {
	return func(r *Runner) { r.modeler = m }
}

// WithExtractor replaces the repository extractor.
func WithExtractor(e *repoextract.Extractor) Option {
	return func(r *Runner) { r.extractor = e }
}

// WithClock sets the clock anchoring recent-activity windows.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Runner from cfg. Components not supplied through options are
// constructed from the configuration.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	maxFile, err := cfg.Limits.FileBytes()
	if err != nil {
		return nil, err
	}

	maxTotal, err := cfg.Limits.TotalBytes()
	if err != nil {
		return nil, err
	}

	r.loader = loader.New(
		loader.WithLimits(maxFile, maxTotal),
		loader.WithLogger(r.logger),
		loader.WithMetrics(r.metrics),
	)
	r.classifier = classify.NewProcessor(nil, r.logger)
	r.meta = metadata.NewExtractor(r.logger)

	if r.proc == nil {
		p, procErr := preprocess.New(preprocess.OptionsFromConfig(cfg.Preprocess), preprocess.WithLogger(r.logger))
		if procErr != nil {
			return nil, fmt.Errorf("build preprocessor: %w", procErr)
		}

		r.proc = p
	}

	if r.noCache {
		r.cache = nil
	} else if r.cache == nil && cfg.Cache.Enabled {
		c, cacheErr := bowcache.New(cfg.Cache.Directory,
			bowcache.WithLogger(r.logger), bowcache.WithMetrics(r.metrics))
		if cacheErr != nil {
			return nil, fmt.Errorf("open cache: %w", cacheErr)
		}

		r.cache = c
	}

	if r.extractor == nil {
		var emails []string
		if cfg.Identity.UserEmail != "" {
			emails = []string{cfg.Identity.UserEmail}
		}

		r.extractor = repoextract.New(
			repoextract.WithMatcher(identity.NewMatcher(emails, cfg.Identity.MatchNoreply)),
			repoextract.WithLogger(r.logger),
			repoextract.WithMetrics(r.metrics),
		)
	}

	if r.modeler == nil {
		r.modeler = topics.NewGibbsLDA(cfg.Topics.NumTopics, cfg.Topics.Iterations, cfg.Topics.TopTerms)
	}

	if r.prompt == "" {
		r.prompt = summarizer.DefaultPrompt
	}

	return r, nil
}

func (r *Runner) stage(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := r.tracer.Start(ctx, "analysis."+name)
	done := r.metrics.TimeStage(ctx, name)

	r.logger.DebugContext(ctx, "stage started", "stage", name)

	return ctx, func() {
		done()
		span.End()
	}
}

// Run analyses path. Input-validation and preprocessing failures abort the
// run. Repository, summary and store failures are logged and leave the
// corresponding fragments empty.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	ctx = observability.WithRunID(ctx, uuid.NewString())

	ctx, span := r.tracer.Start(ctx, "analysis.run", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	res := &Result{AnalysisResult: &assembler.AnalysisResult{InputPath: path}}

	loadCtx, endLoad := r.stage(ctx, "load")
	loaded, err := r.loader.Load(loadCtx, path)
	endLoad()

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	tree, payloads := loaded.Tree, loaded.Payloads

	_, endClassify := r.stage(ctx, "classify")
	cls := r.classifier.Process(tree, payloads)
	endClassify()

	res.Dropped = cls.Dropped

	metaCtx, endMeta := r.stage(ctx, "metadata")
	res.MetadataResults = r.meta.Extract(metaCtx, tree, payloads, documentNodes(tree))
	res.MetadataAnalysis = metadata.Analyze(res.MetadataResults, r.now())
	endMeta()

	res.Repositories = r.extractor.ExtractAll(ctx, tree, payloads, cls.RepoHeads)

	_, endRepo := r.stage(ctx, "repo_analysis")
	res.ProjectAnalysis = repoanalysis.Analyze(res.Repositories)
	endRepo()

	for _, name := range res.ProjectAnalysis.Failed {
		r.logger.WarnContext(ctx, "repository extraction failed", "repo", name)
	}

	corpus := preprocess.BuildCorpus(tree, payloads, cls, preprocess.OptionsFromConfig(r.cfg.Preprocess))
	corpus.HeadCommit = rootHeadCommit(tree, cls, res.Repositories)

	glue := preprocess.NewGlue(r.proc, preprocess.OptionsFromConfig(r.cfg.Preprocess), r.cache, r.logger, r.metrics)

	bow, err := glue.Run(ctx, corpus)
	if err != nil {
		return nil, err
	}

	res.FinalBoW = bow.Artifact
	res.CacheHit = bow.Hit

	r.fitTopics(ctx, res, bow.Key)
	r.summarize(ctx, res)
	r.assemble(ctx, res)

	return res, nil
}

// documentNodes returns the surviving text and code files in tree order.
func documentNodes(tree *filetree.Tree) []filetree.NodeID {
	var out []filetree.NodeID

	for _, id := range tree.Files() {
		switch tree.Node(id).Classification {
		case filetree.Text, filetree.Code:
			out = append(out, id)
		}
	}

	return out
}

// rootHeadCommit returns the head commit when the input root is itself a
// successfully extracted repository.
func rootHeadCommit(tree *filetree.Tree, cls classify.Result, records []repoextract.Record) string {
	if len(cls.RepoHeads) != 1 || cls.RepoHeads[0] != tree.Root() {
		return ""
	}

	for i := range records {
		if records[i].Path == tree.Node(tree.Root()).Path && records[i].OK() {
			return records[i].HeadCommit
		}
	}

	return ""
}

func (r *Runner) fitTopics(ctx context.Context, res *Result, key bowcache.Key) {
	ctx, end := r.stage(ctx, "topics")
	defer end()

	digest, err := key.Digest()
	if err != nil {
		r.logger.WarnContext(ctx, "topic seed unavailable", "error", err)
	}

	model, err := r.modeler.Fit(res.FinalBoW, topics.SeedFromDigest(digest))
	if errors.Is(err, topics.ErrEmptyCorpus) {
		r.logger.InfoContext(ctx, "no tokens to model")

		return
	}

	if err != nil {
		r.logger.WarnContext(ctx, "topic modelling failed", "error", err)

		return
	}

	res.Topics = model
}

func (r *Runner) summarize(ctx context.Context, res *Result) {
	if r.summarizer == nil {
		return
	}

	ctx, end := r.stage(ctx, "summarize")
	defer end()

	bundle := map[string]any{
		"metadata_analysis": res.MetadataAnalysis,
		"project_analysis":  res.ProjectAnalysis,
		"topics":            res.Topics.TopicTerms,
	}

	text, err := r.summarizer.Summarize(ctx, r.prompt, bundle)
	if err != nil {
		r.logger.WarnContext(ctx, "summary omitted", "error", err)

		return
	}

	res.MediumSummary = text
}

func (r *Runner) assemble(ctx context.Context, res *Result) {
	if r.store == nil {
		return
	}

	ctx, end := r.stage(ctx, "assemble")
	defer end()

	id, err := assembler.New(r.store, assembler.WithLogger(r.logger)).Assemble(ctx, res.AnalysisResult)
	if err != nil {
		r.logger.WarnContext(ctx, "analysis stored with errors", "analysis", id, "error", err)
	}

	if id != "" {
		r.logger.InfoContext(ctx, "analysis stored", "analysis", id)
	}
}

// Cache returns the bag-of-words cache, or nil when caching is disabled.
func (r *Runner) Cache() *bowcache.Cache {
	return r.cache
}

// CacheKey computes the cache key a run over path would use without
// preprocessing anything.
func (r *Runner) CacheKey(ctx context.Context, path string) (bowcache.Key, error) {
	loaded, err := r.loader.Load(ctx, path)
	if err != nil {
		return bowcache.Key{}, fmt.Errorf("load %s: %w", path, err)
	}

	tree, payloads := loaded.Tree, loaded.Payloads
	cls := r.classifier.Process(tree, payloads)

	var records []repoextract.Record
	if slices.Contains(cls.RepoHeads, tree.Root()) {
		records = r.extractor.ExtractAll(ctx, tree, payloads, []filetree.NodeID{tree.Root()})
	}

	opts := preprocess.OptionsFromConfig(r.cfg.Preprocess)
	corpus := preprocess.BuildCorpus(tree, payloads, cls, opts)
	corpus.HeadCommit = rootHeadCommit(tree, cls, records)

	return preprocess.NewGlue(r.proc, opts, nil, r.logger, nil).Key(corpus), nil
}
