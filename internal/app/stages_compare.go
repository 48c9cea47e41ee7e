package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sgguerra29/tpmScraper/internal/adapters/tablecsv"
	"github.com/sgguerra29/tpmScraper/internal/domain/aggregate"
	"github.com/sgguerra29/tpmScraper/internal/domain/compare"
	"github.com/sgguerra29/tpmScraper/internal/domain/crossref"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/sgguerra29/tpmScraper/pkg/logger"
)

// Comparison source labels. The rename rules key off these names.
const (
	srcCengenSput      = "cengen sp_ut"
	srcCengenSperm     = "cengen spermatheca"
	srcWormseqSput     = "wormseq sp_ut"
	srcWormseqSperm    = "wormseq spermatheca"
	crossrefMergedName = "wormseq merged spermatheca"
)

// relabel rewrites a table under a new source name.
func relabel(t model.Table, name string) model.Table {
	records := make([]model.Record, len(t.Records))
	for i, r := range t.Records {
		r.Source = name
		records[i] = r
	}
	return model.Table{Name: name, Records: records}
}

// comparisonSources assembles the four cross-dataset sources from the
// filtered tables. Sources whose inputs are missing are left out.
func (p *Pipeline) comparisonSources() []model.Table {
	var out []model.Table

	for _, t := range p.cengenFiltered {
		lower := strings.ToLower(t.Name)
		switch {
		case strings.Contains(lower, "sp_ut"):
			out = append(out, relabel(t, srcCengenSput))
		case strings.Contains(lower, "spermatheca"):
			out = append(out, relabel(t, srcCengenSperm))
		}
	}

	for _, t := range p.wormseqFiltered {
		if g, ok := p.groups.GroupFor(t.Name); ok && g == "valve" {
			// The junction export carries one row per cell; collapse
			// duplicate genes before comparing.
			out = append(out, aggregate.MergeByMax([]model.Table{t}, srcWormseqSput))
		}
	}

	if len(p.merged.Records) > 0 {
		out = append(out, relabel(p.merged, srcWormseqSperm))
	}
	return out
}

// compareDatasets pivots the comparison sources into the gene x source
// matrix and derives the overlap statistics and common-genes subtable.
func (p *Pipeline) compareDatasets(ctx context.Context) error {
	log := p.logger.Named("compare")

	sources := p.comparisonSources()
	if len(sources) == 0 {
		log.Warn(ctx, "no comparison sources available, skipping")
		return nil
	}

	m := compare.Pivot(sources)
	path := filepath.Join(p.cfg.OutputDir, "gene_expression_comparison.csv")
	if err := tablecsv.WriteMatrix(path, m); err != nil {
		return err
	}
	p.metrics.RecordTableWritten()
	log.Info(ctx, "wrote comparison matrix",
		logger.String("path", path),
		logger.Int("genes", len(m.Genes)),
		logger.Int("sources", len(m.Columns)))

	cengen := compare.GroupGenes(m, []string{srcCengenSperm, srcCengenSput})
	wormseq := compare.GroupGenes(m, []string{srcWormseqSperm, srcWormseqSput})
	overlap := compare.ComputeOverlap(cengen, wormseq)
	log.Info(ctx, "dataset gene coverage overlap",
		logger.Int("intersection", overlap.Intersection),
		logger.Int("union", overlap.Union),
		logger.Int("cengen_only", overlap.OnlyA),
		logger.Int("wormseq_only", overlap.OnlyB))

	common := p.commonGenes(m)
	if len(common.Genes) > 0 {
		commonPath := filepath.Join(p.cfg.OutputDir, "common_genes_by_regions.csv")
		if err := tablecsv.WriteMatrix(commonPath, common); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()
		log.Info(ctx, "wrote common genes subtable",
			logger.String("path", commonPath),
			logger.Int("genes", len(common.Genes)))
	}
	return nil
}

// commonGenes unions the genes shared by both spermatheca sources with
// those shared by both junction sources, keeping first-seen row order.
func (p *Pipeline) commonGenes(m model.Matrix) model.Matrix {
	out := model.Matrix{
		Columns: m.Columns,
		Values:  make(map[string]map[string]float64),
	}
	pairs := [][]string{
		{srcCengenSperm, srcWormseqSperm},
		{srcCengenSput, srcWormseqSput},
	}
	for _, pair := range pairs {
		sub := compare.CommonRows(m, pair)
		for _, gene := range sub.Genes {
			if _, seen := out.Values[gene]; seen {
				continue
			}
			out.Genes = append(out.Genes, gene)
			out.Values[gene] = m.Values[gene]
		}
	}
	return out
}

// crossReference intersects the curated gene-function table against every
// expression dataset and writes the match records plus a coverage summary.
func (p *Pipeline) crossReference(ctx context.Context) error {
	log := p.logger.Named("crossref")

	_, rows, err := tablecsv.ReadRaw(p.cfg.CuratedGenesFile)
	if errors.Is(err, tablecsv.ErrMissingFile) || errors.Is(err, tablecsv.ErrEmptyInput) {
		log.Warn(ctx, "curated gene table unavailable, skipping cross-reference",
			logger.String("path", p.cfg.CuratedGenesFile), logger.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	categorizer := crossref.NewCategorizer(nil)
	curated := crossref.ParseCurated(rows, categorizer)
	log.Info(ctx, "loaded curated gene table", logger.Int("rows", len(curated)))

	datasets := make([]model.Table, 0, len(p.wormseqFiltered)+len(p.cengenFiltered)+1)
	datasets = append(datasets, p.wormseqFiltered...)
	if len(p.merged.Records) > 0 {
		datasets = append(datasets, relabel(p.merged, crossrefMergedName))
	}
	datasets = append(datasets, p.cengenFiltered...)

	matches := crossref.CrossReference(curated, datasets)
	if len(matches) == 0 {
		log.Warn(ctx, "no curated genes matched any expression dataset")
		return nil
	}

	path := filepath.Join(p.cfg.OutputDir, "wormmine_expression_crossref.csv")
	if err := tablecsv.WriteMatches(path, matches); err != nil {
		return err
	}
	p.metrics.RecordTableWritten()

	summary := crossref.Summarize(curated, matches)
	summaryPath := filepath.Join(p.cfg.OutputDir, "crossref_summary.txt")
	if err := os.WriteFile(summaryPath, []byte(formatSummary(summary)), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", summaryPath, err)
	}

	log.Info(ctx, "cross-reference complete",
		logger.Int("matches", len(matches)),
		logger.Int("curated_genes", summary.CuratedGenes),
		logger.Int("matched_genes", summary.MatchedGenes))
	return nil
}

func formatSummary(s crossref.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Curated genes: %d\n", s.CuratedGenes)
	fmt.Fprintf(&b, "Genes found in expression datasets: %d\n", s.MatchedGenes)
	if s.CuratedGenes > 0 {
		fmt.Fprintf(&b, "Coverage: %.1f%%\n", float64(s.MatchedGenes)/float64(s.CuratedGenes)*100)
	}

	b.WriteString("\nBreakdown by functional category:\n")
	categories := make([]string, 0, len(s.PerCategory))
	for cat := range s.PerCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		cs := s.PerCategory[cat]
		fmt.Fprintf(&b, "  %s: %d/%d genes found\n", cat, cs.Matched, cs.Curated)
	}

	b.WriteString("\nBreakdown by dataset:\n")
	datasets := make([]string, 0, len(s.PerDataset))
	for ds := range s.PerDataset {
		datasets = append(datasets, ds)
	}
	sort.Strings(datasets)
	for _, ds := range datasets {
		stats := s.PerDataset[ds]
		fmt.Fprintf(&b, "  %s: %d genes, avg expression: %.1f\n", ds, stats.Genes, stats.MeanValue)
	}
	return b.String()
}
