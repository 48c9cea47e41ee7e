package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sgguerra29/tpmScraper/internal/adapters/tablecsv"
	"github.com/sgguerra29/tpmScraper/internal/domain/aggregate"
	"github.com/sgguerra29/tpmScraper/internal/domain/filter"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/sgguerra29/tpmScraper/internal/domain/normalize"
	"github.com/sgguerra29/tpmScraper/internal/domain/relative"
	"github.com/sgguerra29/tpmScraper/pkg/logger"
)

const (
	filteredSuffix = "_filtered.csv"
	mergedFileName = "merged_wormseq_spermatheca.csv"
	mergedLabel    = "wormseq spermatheca"
)

// readRules consults the name-based rename rules first and falls back to
// the directory's fixed column shape for tables no rule covers.
func (p *Pipeline) readRules(spec normalize.Spec) []normalize.Rule {
	rules := make([]normalize.Rule, 0, len(p.rules)+1)
	rules = append(rules, p.rules...)
	return append(rules, normalize.FixedRules(spec)...)
}

// filterRegions reads every raw region table in the two dataset
// directories, applies the expression threshold, and writes the filtered
// tables next to their inputs.
func (p *Pipeline) filterRegions(ctx context.Context) error {
	var err error
	p.wormseqRaw, p.wormseqFiltered, err = p.filterDir(ctx, p.cfg.WormseqDir, p.wormseqSpec)
	if err != nil {
		return err
	}
	_, p.cengenFiltered, err = p.filterDir(ctx, p.cfg.CengenDir, p.cengenSpec)
	return err
}

func (p *Pipeline) filterDir(ctx context.Context, dir string, spec normalize.Spec) (raw, filtered []model.Table, err error) {
	log := p.logger.Named("filter")

	files, err := tablecsv.ListCSVFiles(dir, ".csv")
	if errors.Is(err, tablecsv.ErrMissingFile) || errors.Is(err, tablecsv.ErrEmptyInput) {
		log.Warn(ctx, "no region tables found, skipping directory",
			logger.String("dir", dir), logger.Error(err))
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rules := p.readRules(spec)
	for _, path := range files {
		region := tablecsv.BaseName(path, ".csv")
		if strings.HasSuffix(path, filteredSuffix) || filepath.Base(path) == mergedFileName {
			continue // derived outputs from an earlier run
		}

		t, err := tablecsv.ReadTable(path, region, rules)
		if err != nil {
			log.Warn(ctx, "skipping unreadable region table",
				logger.String("path", path), logger.Error(err))
			p.metrics.RecordFileSkipped()
			continue
		}
		p.metrics.RecordTableRead()

		kept := filter.Apply(t, p.cfg.ExpressionThreshold)
		p.metrics.RecordRowsFiltered(len(kept.Records), len(t.Records)-len(kept.Records))

		outPath := filepath.Join(dir, region+filteredSuffix)
		if err := tablecsv.WriteTable(outPath, kept); err != nil {
			return nil, nil, err
		}
		p.metrics.RecordTableWritten()

		log.Info(ctx, "filtered region table",
			logger.String("region", region),
			logger.Int("kept", len(kept.Records)),
			logger.Int("total", len(t.Records)),
			logger.Float64("threshold", p.cfg.ExpressionThreshold))

		raw = append(raw, t)
		filtered = append(filtered, kept)
	}
	return raw, filtered, nil
}

// aggregateMatrices outer-joins the filtered tables of each dataset into
// a gene x region matrix.
func (p *Pipeline) aggregateMatrices(ctx context.Context) error {
	log := p.logger.Named("aggregate")

	write := func(tables []model.Table, file string) error {
		if len(tables) == 0 {
			log.Warn(ctx, "no filtered tables to aggregate", logger.String("output", file))
			return nil
		}
		m, err := aggregate.BuildMatrix(tables)
		if err != nil {
			return err
		}
		path := filepath.Join(p.cfg.OutputDir, file)
		if err := tablecsv.WriteMatrix(path, m); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()
		log.Info(ctx, "wrote expression matrix",
			logger.String("path", path),
			logger.Int("genes", len(m.Genes)),
			logger.Int("regions", len(m.Columns)))
		return nil
	}

	if err := write(p.wormseqFiltered, "scaled_TPM_matrix.csv"); err != nil {
		return err
	}
	return write(p.cengenFiltered, "cengen_scaled_TPM_matrix.csv")
}

// mergeRegions unions the bag and neck region tables into one
// max-per-gene table standing for the spermatheca proper. The valve
// region is deliberately excluded; it is compared on its own.
func (p *Pipeline) mergeRegions(ctx context.Context) error {
	log := p.logger.Named("merge")

	var parts []model.Table
	for _, t := range p.wormseqFiltered {
		if g, ok := p.groups.GroupFor(t.Name); ok && g != "valve" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		log.Warn(ctx, "no bag or neck tables to merge")
		return nil
	}

	p.merged = aggregate.MergeByMax(parts, mergedLabel)

	path := filepath.Join(p.cfg.WormseqDir, mergedFileName)
	if err := tablecsv.WriteTable(path, p.merged); err != nil {
		return err
	}
	p.metrics.RecordTableWritten()
	log.Info(ctx, "merged spermatheca regions",
		logger.Int("regions", len(parts)),
		logger.Int("genes", len(p.merged.Records)))
	return nil
}

// relativeExpression builds the whole-organism reference index and
// derives relative expression records for every target region.
func (p *Pipeline) relativeExpression(ctx context.Context) error {
	log := p.logger.Named("relative")

	files, err := tablecsv.ListCSVFiles(p.cfg.ReferenceDir, ".csv")
	if errors.Is(err, tablecsv.ErrMissingFile) || errors.Is(err, tablecsv.ErrEmptyInput) {
		log.Warn(ctx, "no reference tables, skipping relative expression", logger.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	rules := p.readRules(p.wormseqSpec)
	var refs []model.Table
	for _, path := range files {
		t, err := tablecsv.ReadTable(path, tablecsv.BaseName(path, ".csv"), rules)
		if err != nil {
			log.Warn(ctx, "skipping unreadable reference table",
				logger.String("path", path), logger.Error(err))
			p.metrics.RecordFileSkipped()
			continue
		}
		p.metrics.RecordTableRead()
		refs = append(refs, t)
	}

	index := relative.BuildIndex(refs)
	p.metrics.SetGenesIndexed(len(index))
	log.Info(ctx, "built reference index",
		logger.Int("genes", len(index)),
		logger.Int("tables", len(refs)))

	targets := make([]string, 0, len(p.wormseqRaw))
	for _, t := range p.wormseqRaw {
		targets = append(targets, t.Name)
	}
	calc := relative.NewCalculator(index,
		relative.WithGroups(p.groups),
		relative.WithTargets(targets))

	p.relativeByRgn = make(map[string][]model.RelativeRecord, len(p.wormseqRaw))
	for _, t := range p.wormseqRaw {
		recs := calc.Compute(t)
		p.relativeByRgn[t.Name] = recs

		path := filepath.Join(p.cfg.RelativeDir, t.Name+".csv")
		if err := tablecsv.WriteRelative(path, recs); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()

		inTarget := 0
		for _, r := range recs {
			if r.MaxInTarget {
				inTarget++
			}
		}
		log.Info(ctx, "computed relative expression",
			logger.String("region", t.Name),
			logger.Int("genes", len(recs)),
			logger.Int("max_in_target", inTarget))
	}

	matrix := relativeMatrix(p.relativeByRgn, targets)
	if len(matrix.Genes) > 0 {
		path := filepath.Join(p.cfg.OutputDir, "relative_TPM_matrix.csv")
		if err := tablecsv.WriteMatrix(path, matrix); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()
		log.Info(ctx, "wrote relative expression matrix",
			logger.String("path", path),
			logger.Int("genes", len(matrix.Genes)))
	}
	return nil
}

// relativeMatrix pivots the structure-specific relative values into a
// gene x region matrix. Only genes whose reference maximum lies inside the
// target collection appear; cells without a defined relative stay absent.
func relativeMatrix(byRegion map[string][]model.RelativeRecord, regions []string) model.Matrix {
	m := model.Matrix{Values: make(map[string]map[string]float64)}
	for _, region := range regions {
		m.Columns = append(m.Columns, region)
		for _, r := range byRegion[region] {
			if !r.MaxInTarget || r.Relative == nil {
				continue
			}
			row, ok := m.Values[r.Gene]
			if !ok {
				row = make(map[string]float64)
				m.Values[r.Gene] = row
				m.Genes = append(m.Genes, r.Gene)
			}
			row[region] = *r.Relative
		}
	}
	return m
}
