// Package app wires the pipeline stages together and runs them in order.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sgguerra29/tpmScraper/internal/adapters/gprofiler"
	"github.com/sgguerra29/tpmScraper/internal/config"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/sgguerra29/tpmScraper/internal/domain/normalize"
	"github.com/sgguerra29/tpmScraper/internal/domain/relative"
	"github.com/sgguerra29/tpmScraper/pkg/logger"
	"github.com/sgguerra29/tpmScraper/pkg/metrics"
)

// Enricher is the boundary to the ontology enrichment service.
type Enricher interface {
	Profile(ctx context.Context, q gprofiler.Query) ([]model.TermRecord, error)
}

// Pipeline executes the expression analysis end to end: threshold
// filtering, aggregation, relative expression, cross-dataset comparison,
// gene-function cross-referencing, and ontology enrichment. Stages run
// sequentially; a failed source is logged and skipped, it never aborts
// the remaining sources.
type Pipeline struct {
	cfg      *config.Config
	rules    []normalize.Rule
	groups   relative.Groups
	enricher Enricher

	logger  logger.Logger
	metrics *metrics.Manager

	// Raw column shapes for the two dataset directories.
	wormseqSpec normalize.Spec
	cengenSpec  normalize.Spec

	// state carried between stages within one run
	wormseqRaw      []model.Table // unfiltered wormseq region tables, dir order
	wormseqFiltered []model.Table // filtered wormseq region tables, dir order
	cengenFiltered  []model.Table // filtered cengen region tables, dir order
	merged          model.Table   // max-per-gene union of the bag/neck regions
	relativeByRgn   map[string][]model.RelativeRecord
	termsByRegion   map[string][]model.TermRecord
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) {
		if cfg != nil {
			p.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithEnricher sets the enrichment service client.
func WithEnricher(e Enricher) Option {
	return func(p *Pipeline) {
		p.enricher = e
	}
}

// WithRules sets name-based column rename rules. They take precedence over
// each directory's fixed column shape when reading raw tables.
func WithRules(rules []normalize.Rule) Option {
	return func(p *Pipeline) {
		if rules != nil {
			p.rules = rules
		}
	}
}

// WithGroups sets the region-to-component mapping.
func WithGroups(groups relative.Groups) Option {
	return func(p *Pipeline) {
		if groups != nil {
			p.groups = groups
		}
	}
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:         config.New(),
		rules:       normalize.DefaultRules(),
		groups:      relative.DefaultGroups(),
		logger:      nil,
		metrics:     metrics.Default(),
		wormseqSpec: normalize.Spec{GeneColumn: "gene_short_name", ValueColumn: "scaled_TPM"},
		cengenSpec:  normalize.Spec{GeneColumn: "Gene name", ValueColumn: "Expression level"},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Default()
	}
	return p
}

type stage struct {
	name string
	fn   func(context.Context) error
}

// Run executes every stage in order. Recoverable conditions (missing
// files, empty gene lists, failed service calls) are logged and skipped;
// Run returns an error only when a stage cannot proceed at all.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := p.logger.Named("pipeline")
	log.Info(ctx, "starting run",
		logger.String("run_id", runID),
		logger.Float64("expression_threshold", p.cfg.ExpressionThreshold),
		logger.String("organism", p.cfg.Organism))

	stages := []stage{
		{"filter_regions", p.filterRegions},
		{"aggregate_matrices", p.aggregateMatrices},
		{"merge_regions", p.mergeRegions},
		{"relative_expression", p.relativeExpression},
		{"compare_datasets", p.compareDatasets},
		{"cross_reference", p.crossReference},
		{"enrich", p.enrichRegions},
		{"combine_enrichment", p.combineEnrichment},
	}

	start := time.Now()
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		stageStart := time.Now()
		if err := s.fn(ctx); err != nil {
			log.Error(ctx, "stage failed", logger.String("stage", s.name), logger.Error(err))
			return err
		}
		p.metrics.ObserveStageDuration(s.name, time.Since(stageStart))
		log.Debug(ctx, "stage complete",
			logger.String("stage", s.name),
			logger.String("elapsed", time.Since(stageStart).String()))
	}

	log.Info(ctx, "run complete",
		logger.String("run_id", runID),
		logger.String("elapsed", time.Since(start).String()))
	return nil
}
