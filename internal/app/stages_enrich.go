package app

import (
	"context"
	"errors"
	"path/filepath"
	"sort"

	"github.com/sgguerra29/tpmScraper/internal/adapters/gprofiler"
	"github.com/sgguerra29/tpmScraper/internal/adapters/tablecsv"
	"github.com/sgguerra29/tpmScraper/internal/domain/enrich"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/sgguerra29/tpmScraper/pkg/logger"
)

// enrichRegions submits the specificity-filtered gene list of every region
// to the enrichment service. A failed region is logged and skipped so one
// outage never voids the whole run.
func (p *Pipeline) enrichRegions(ctx context.Context) error {
	log := p.logger.Named("enrich")

	if p.enricher == nil {
		log.Warn(ctx, "no enrichment service configured, skipping")
		return nil
	}
	if len(p.relativeByRgn) == 0 {
		log.Warn(ctx, "no relative expression records, skipping enrichment")
		return nil
	}

	regions := make([]string, 0, len(p.relativeByRgn))
	for region := range p.relativeByRgn {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	p.termsByRegion = make(map[string][]model.TermRecord, len(regions))
	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		recs := p.relativeByRgn[region]

		structural := enrich.FilterTargetSpecific(recs)
		component := enrich.FilterComponentSpecific(recs)

		if err := tablecsv.WriteRelative(
			filepath.Join(p.cfg.EnrichmentDir, region+"_filtered_spermatheca.csv"), structural); err != nil {
			return err
		}
		if err := tablecsv.WriteRelative(
			filepath.Join(p.cfg.EnrichmentDir, region+"_filtered_component.csv"), component); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()
		p.metrics.RecordTableWritten()

		terms, err := p.profileGenes(ctx, region, enrich.GeneList(structural))
		if err != nil {
			continue
		}
		if terms == nil {
			continue
		}
		p.termsByRegion[region] = terms
		if err := tablecsv.WriteTermRecords(
			filepath.Join(p.cfg.EnrichmentDir, region+enrichedSuffix), terms); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()

		if componentTerms, err := p.profileGenes(ctx, region, enrich.GeneList(component)); err == nil && componentTerms != nil {
			if err := tablecsv.WriteTermRecords(
				filepath.Join(p.cfg.EnrichmentDir, region+"_enrichment_component.csv"), componentTerms); err != nil {
				return err
			}
			p.metrics.RecordTableWritten()
		}
	}
	return nil
}

// profileGenes calls the enrichment service for one gene list and tags the
// returned terms with the region. A nil, nil return means the list was
// empty; an error means the call failed and was already logged.
func (p *Pipeline) profileGenes(ctx context.Context, region string, genes []string) ([]model.TermRecord, error) {
	log := p.logger.Named("enrich")

	if len(genes) == 0 {
		log.Warn(ctx, "no specific genes for region, skipping query",
			logger.String("region", region))
		return nil, nil
	}

	p.metrics.RecordEnrichmentRequest()
	terms, err := p.enricher.Profile(ctx, gprofiler.Query{
		Organism:  p.cfg.Organism,
		Genes:     genes,
		Threshold: p.cfg.SignificanceThreshold,
		Sources:   p.cfg.OntologySources,
	})
	if err != nil {
		p.metrics.RecordEnrichmentError()
		log.Warn(ctx, "enrichment query failed, skipping region",
			logger.String("region", region),
			logger.Int("genes", len(genes)),
			logger.Error(err))
		return nil, err
	}

	for i := range terms {
		terms[i].Region = region
	}
	log.Info(ctx, "enrichment query complete",
		logger.String("region", region),
		logger.Int("genes", len(genes)),
		logger.Int("terms", len(terms)))
	return terms, nil
}

const enrichedSuffix = "_enrichment_spermatheca.csv"

// combineEnrichment folds the per-region responses into the combined table
// and fans the member genes back out into per-region term list files. The
// responses are gathered from the files in the enrichment directory, not
// just this run's memory, so tables stored by an earlier run still
// contribute when a region's service call failed.
func (p *Pipeline) combineEnrichment(ctx context.Context) error {
	log := p.logger.Named("combine")

	perRegion, err := p.collectResponses(ctx)
	if err != nil {
		return err
	}

	combined, err := enrich.Combine(perRegion)
	if errors.Is(err, enrich.ErrEmptyInput) {
		log.Warn(ctx, "no enrichment results to combine, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	path := filepath.Join(p.cfg.OutputDir, "combined_spermatheca_enrichment.csv")
	if err := tablecsv.WriteTermRecords(path, combined); err != nil {
		return err
	}
	p.metrics.RecordTableWritten()
	log.Info(ctx, "wrote combined enrichment table",
		logger.String("path", path),
		logger.Int("terms", len(combined)),
		logger.Int("regions", len(p.termsByRegion)))

	for region, lists := range enrich.ListsByRegion(combined) {
		listPath := filepath.Join(p.cfg.GeneListDir, region+"_go_genes_lists.csv")
		if err := tablecsv.WriteTermLists(listPath, lists); err != nil {
			return err
		}
		p.metrics.RecordTableWritten()
		log.Info(ctx, "wrote term gene lists",
			logger.String("region", region),
			logger.Int("terms", len(lists)))
	}
	return nil
}

// collectResponses merges this run's enrichment responses with the response
// tables stored in the enrichment directory. In-memory responses win for
// their region; regions served only by a stored file are read back.
func (p *Pipeline) collectResponses(ctx context.Context) (map[string][]model.TermRecord, error) {
	log := p.logger.Named("combine")

	perRegion := make(map[string][]model.TermRecord, len(p.termsByRegion))
	for region, terms := range p.termsByRegion {
		perRegion[region] = terms
	}

	files, err := tablecsv.ListCSVFiles(p.cfg.EnrichmentDir, enrichedSuffix)
	if errors.Is(err, tablecsv.ErrMissingFile) || errors.Is(err, tablecsv.ErrEmptyInput) {
		return perRegion, nil
	}
	if err != nil {
		return nil, err
	}

	for _, path := range files {
		region := tablecsv.BaseName(path, enrichedSuffix)
		if _, ok := perRegion[region]; ok {
			continue
		}
		terms, err := tablecsv.ReadTermRecords(path)
		if err != nil {
			log.Warn(ctx, "skipping unreadable enrichment response",
				logger.String("path", path), logger.Error(err))
			p.metrics.RecordFileSkipped()
			continue
		}
		p.metrics.RecordTableRead()
		perRegion[region] = terms
		log.Info(ctx, "recovered stored enrichment response",
			logger.String("region", region),
			logger.Int("terms", len(terms)))
	}
	return perRegion, nil
}
