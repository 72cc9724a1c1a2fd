package usecase

import (
	"context"
	"errors"
	"fmt"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/logger"
	"agency-report-service/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// SourceSpec names one booking source and the filters to read it with
type SourceSpec struct {
	EntityType entity.EntityType
	Source     repository.RecordSource
	Filters    []repository.Predicate
}

// SourceWarning describes a source that was omitted or cut short
type SourceWarning struct {
	EntityType entity.EntityType `json:"entityType"`
	Message    string            `json:"message"`
}

// MergeResult is the concatenation of every readable source
type MergeResult struct {
	Records  []entity.Record `json:"-"`
	Warnings []SourceWarning `json:"warnings,omitempty"`
	// Partial is set when at least one source failed.
	Partial bool `json:"partial"`
}

// MergerConfig bounds how much a merge may read
type MergerConfig struct {
	MaxRecordsPerSource int
	Concurrency         int
	PageSize            int
}

// Merger reads several booking sources concurrently and concatenates them
type Merger struct {
	cfg     MergerConfig
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewMerger creates a new merger
func NewMerger(cfg MergerConfig, log logger.Logger, m *metrics.Metrics) *Merger {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &Merger{cfg: cfg, logger: log, metrics: m}
}

type sourceResult struct {
	records   []entity.Record
	truncated bool
	err       error
}

// Merge fetches every source and concatenates the records in argument order. A
// failing source is skipped with a warning; when every source fails the merge
// fails with a SourceUnavailableError.
func (m *Merger) Merge(ctx context.Context, specs []SourceSpec) (*MergeResult, error) {
	results := make([]sourceResult, len(specs))

	var g errgroup.Group
	g.SetLimit(m.cfg.Concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			records, truncated, err := m.drain(ctx, spec)
			results[i] = sourceResult{records: records, truncated: truncated, err: err}
			return nil
		})
	}
	// Failures are kept per source, so the group itself never errors
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &MergeResult{}
	var errs []error
	for i, spec := range specs {
		r := results[i]
		if r.err != nil {
			errs = append(errs, r.err)
			res.Partial = true
			res.Warnings = append(res.Warnings, SourceWarning{
				EntityType: spec.EntityType,
				Message:    r.err.Error(),
			})
			m.logger.Error("Source fetch failed", "entityType", spec.EntityType, "error", r.err)
			if m.metrics != nil {
				m.metrics.SourceFailures.WithLabelValues(string(spec.EntityType)).Inc()
			}
			continue
		}
		if r.truncated {
			res.Warnings = append(res.Warnings, SourceWarning{
				EntityType: spec.EntityType,
				Message:    fmt.Sprintf("truncated at %d records", m.cfg.MaxRecordsPerSource),
			})
			m.logger.Warn("Source truncated", "entityType", spec.EntityType, "cap", m.cfg.MaxRecordsPerSource)
			if m.metrics != nil {
				m.metrics.TruncatedScans.WithLabelValues(string(spec.EntityType)).Inc()
			}
		}
		res.Records = append(res.Records, r.records...)
	}

	if len(specs) > 0 && len(errs) == len(specs) {
		return nil, domain.NewSourceUnavailableError("all booking sources", errors.Join(errs...))
	}
	if res.Partial && m.metrics != nil {
		m.metrics.PartialMerges.Inc()
	}
	return res, nil
}

// drain follows cursors until the source is exhausted or the cap is reached
func (m *Merger) drain(ctx context.Context, spec SourceSpec) ([]entity.Record, bool, error) {
	if spec.Source == nil {
		return nil, false, domain.NewSourceUnavailableError(string(spec.EntityType), errors.New("no source configured"))
	}

	records, truncated, err := drainPages(ctx,
		repository.Query{Filters: spec.Filters, Limit: m.cfg.PageSize},
		m.cfg.MaxRecordsPerSource,
		func(ctx context.Context, q repository.Query) ([]entity.Record, string, error) {
			page, err := spec.Source.FetchRecords(ctx, q)
			if err != nil {
				return nil, "", err
			}
			return page.Items, page.NextCursor, nil
		})
	if err != nil {
		return nil, false, err
	}
	for i := range records {
		records[i].EntityType = spec.EntityType
	}
	return records, truncated, nil
}
