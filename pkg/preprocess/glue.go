package preprocess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
)

// Corpus is the ordered document set of one run.
type Corpus struct {
	Documents  []Document
	HeadCommit string
}

// Paths returns the document paths in corpus order.
func (c Corpus) Paths() []string {
	out := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		out[i] = d.Path
	}

	return out
}

// BuildCorpus collects the text documents, then the code documents, each
// in tree order, keeping only the classes named in filters.
func BuildCorpus(tree *filetree.Tree, payloads filetree.Payloads, cls classify.Result, opts Options) Corpus {
	var c Corpus

	add := func(ids []filetree.NodeID, kind Kind) {
		for _, id := range ids {
			n := tree.Node(id)

			data, ok := payloads.Get(n.BinaryIndex)
			if !ok {
				continue
			}

			c.Documents = append(c.Documents, Document{Path: n.Path, Name: n.Name, Kind: kind, Content: data})
		}
	}

	if opts.HasFilter(FilterText) {
		add(cls.Text, KindText)
	}

	if opts.HasFilter(FilterCode) {
		add(cls.Code, KindCode)
	}

	return c
}

// Output is the result of a Glue run.
type Output struct {
	Artifact bowcache.Artifact
	Key      bowcache.Key
	Hit      bool
}

// Glue consults the bag-of-words cache before preprocessing a corpus.
type Glue struct {
	proc    Processor
	opts    Options
	cache   *bowcache.Cache
	logger  *slog.Logger
	metrics *observability.PipelineMetrics
}

// NewGlue creates a Glue. A nil cache disables caching.
func NewGlue(proc Processor, opts Options, cache *bowcache.Cache, logger *slog.Logger, metrics *observability.PipelineMetrics) *Glue {
	if logger == nil {
		logger = slog.Default()
	}

	return &Glue{proc: proc, opts: opts, cache: cache, logger: logger, metrics: metrics}
}

// Key returns the cache key of corpus under the glue's options.
func (g *Glue) Key(c Corpus) bowcache.Key {
	return bowcache.Key{
		CorpusID:   bowcache.CorpusID(c.Paths()),
		HeadCommit: c.HeadCommit,
		Signature:  g.opts.Signature(),
	}
}

// Run returns the cached artifact for c, or preprocesses c and caches the
// result. A failed cache write is logged and does not fail the run.
func (g *Glue) Run(ctx context.Context, c Corpus) (Output, error) {
	defer g.metrics.TimeStage(ctx, "preprocess")()

	key := g.Key(c)
	out := Output{Key: key}

	if g.cache != nil {
		if art, ok := g.cache.Get(ctx, key); ok {
			g.logger.DebugContext(ctx, "bag-of-words cache hit", "documents", len(art))

			out.Artifact = art
			out.Hit = true

			return out, nil
		}
	}

	tokens, err := g.proc.Process(ctx, c.Documents)
	if err != nil {
		return Output{}, fmt.Errorf("preprocess corpus: %w", err)
	}

	out.Artifact = bowcache.Artifact(tokens)

	if g.cache != nil {
		setErr := g.cache.Set(key, out.Artifact)
		if setErr != nil {
			g.logger.WarnContext(ctx, "bag-of-words cache write failed", "error", setErr)
		}
	}

	return out, nil
}
