package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheLookups    = "artifactminer.bow_cache.lookups.total"
	metricCacheRepairs    = "artifactminer.bow_cache.repairs.total"
	metricFilesIngested   = "artifactminer.files.ingested.total"
	metricFilesDropped    = "artifactminer.files.dropped.total"
	metricReposExtracted  = "artifactminer.repos.extracted.total"
	metricStageDuration   = "artifactminer.stage.duration.seconds"
	metricSummaryRequests = "artifactminer.summary.requests.total"

	attrStage   = "stage"
	attrResult  = "result"
	attrStatus  = "status"
	attrReason  = "reason"
	attrBackend = "backend"

	// ResultHit marks a cache lookup served from disk.
	ResultHit = "hit"
	// ResultMiss marks a cache lookup that had to recompute.
	ResultMiss = "miss"

	// StatusOK marks a successful unit of work.
	StatusOK = "ok"
	// StatusError marks a failed unit of work.
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s; a whole run can include
// multi-minute repository history walks.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// PipelineMetrics holds the OTel instruments recorded during an analysis run.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	cacheLookups    metric.Int64Counter
	cacheRepairs    metric.Int64Counter
	filesIngested   metric.Int64Counter
	filesDropped    metric.Int64Counter
	reposExtracted  metric.Int64Counter
	stageDuration   metric.Float64Histogram
	summaryRequests metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	pm := &PipelineMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&pm.cacheLookups, metricCacheLookups, "Bag-of-words cache lookups by result", "{lookup}"},
		{&pm.cacheRepairs, metricCacheRepairs, "Corrupt cache entries removed", "{entry}"},
		{&pm.filesIngested, metricFilesIngested, "Files admitted into the file tree", "{file}"},
		{&pm.filesDropped, metricFilesDropped, "Files skipped during ingestion", "{file}"},
		{&pm.reposExtracted, metricReposExtracted, "Repositories processed by status", "{repository}"},
		{&pm.summaryRequests, metricSummaryRequests, "Summarizer requests by backend and status", "{request}"},
	}

	for _, c := range counters {
		counter, err := mt.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}

		*c.dst = counter
	}

	hist, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	pm.stageDuration = hist

	return pm, nil
}

// CacheLookup records a cache hit or miss.
func (pm *PipelineMetrics) CacheLookup(ctx context.Context, hit bool) {
	if pm == nil {
		return
	}

	result := ResultMiss
	if hit {
		result = ResultHit
	}

	pm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// CacheRepair records removal of an unreadable cache entry.
func (pm *PipelineMetrics) CacheRepair(ctx context.Context) {
	if pm == nil {
		return
	}

	pm.cacheRepairs.Add(ctx, 1)
}

// FilesIngested records n files added to the tree.
func (pm *PipelineMetrics) FilesIngested(ctx context.Context, n int) {
	if pm == nil || n <= 0 {
		return
	}

	pm.filesIngested.Add(ctx, int64(n))
}

// FileDropped records one skipped file with the reason it was skipped.
func (pm *PipelineMetrics) FileDropped(ctx context.Context, reason string) {
	if pm == nil {
		return
	}

	pm.filesDropped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RepoExtracted records one repository extraction outcome.
func (pm *PipelineMetrics) RepoExtracted(ctx context.Context, status string) {
	if pm == nil {
		return
	}

	pm.reposExtracted.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// SummaryRequest records one summarizer call against backend.
func (pm *PipelineMetrics) SummaryRequest(ctx context.Context, backend, status string) {
	if pm == nil {
		return
	}

	pm.summaryRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrBackend, backend),
		attribute.String(attrStatus, status),
	))
}

// TimeStage starts a timer for stage and returns the function that records
// its duration.
func (pm *PipelineMetrics) TimeStage(ctx context.Context, stage string) func() {
	start := time.Now()

	return func() {
		if pm == nil {
			return
		}

		pm.stageDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String(attrStage, stage)))
	}
}
