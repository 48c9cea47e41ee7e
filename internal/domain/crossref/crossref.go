package crossref

import (
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// CuratedGene is one row of the curated gene-function table. A gene may
// appear on several rows, one per annotated function.
type CuratedGene struct {
	GeneID      string
	WBGeneID    string
	Description string
	Categories  []string
}

// ParseCurated builds curated genes from raw rows whose first three columns
// are gene id, WBGene id, and functional description (the WormMine export
// shape). The categorizer tags each row; extra columns are ignored.
func ParseCurated(rows [][]string, cat *Categorizer) []CuratedGene {
	out := make([]CuratedGene, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		g := CuratedGene{GeneID: row[0], WBGeneID: row[1], Description: row[2]}
		if g.GeneID == "" && g.WBGeneID == "" {
			continue
		}
		g.Categories = cat.Categorize(g.Description)
		out = append(out, g)
	}
	return out
}

// Match is one (gene, dataset, curated row, category) intersection record.
// The fan-out is deliberate: a gene annotated on several curated rows, or
// matching several categories, produces several matches.
type Match struct {
	Gene        string
	WBGeneID    string
	Description string
	Category    string
	Dataset     string
	Value       float64
}

// CrossReference intersects the curated identifiers (either id form)
// against each dataset's gene set. Output order is dataset order, then
// curated row order, then category order.
func CrossReference(curated []CuratedGene, datasets []model.Table) []Match {
	var out []Match
	for _, ds := range datasets {
		genes := ds.GeneSet()
		for _, cg := range curated {
			id := matchedID(cg, genes)
			if id == "" {
				continue
			}
			rec, ok := ds.Lookup(id)
			if !ok {
				continue
			}
			for _, category := range cg.Categories {
				out = append(out, Match{
					Gene:        id,
					WBGeneID:    cg.WBGeneID,
					Description: cg.Description,
					Category:    category,
					Dataset:     ds.Name,
					Value:       rec.Value,
				})
			}
		}
	}
	return out
}

func matchedID(cg CuratedGene, genes map[string]struct{}) string {
	if cg.GeneID != "" {
		if _, ok := genes[cg.GeneID]; ok {
			return cg.GeneID
		}
	}
	if cg.WBGeneID != "" {
		if _, ok := genes[cg.WBGeneID]; ok {
			return cg.WBGeneID
		}
	}
	return ""
}

// CategoryStats counts curated and matched genes for one category.
type CategoryStats struct {
	Curated int
	Matched int
}

// DatasetStats summarizes the matches found in one dataset.
type DatasetStats struct {
	Genes     int
	MeanValue float64
}

// Summary aggregates cross-reference coverage for reporting.
type Summary struct {
	CuratedGenes int
	MatchedGenes int
	PerCategory  map[string]CategoryStats
	PerDataset   map[string]DatasetStats
}

// Summarize computes coverage statistics over the curated table and the
// cross-reference matches.
func Summarize(curated []CuratedGene, matches []Match) Summary {
	s := Summary{
		PerCategory: make(map[string]CategoryStats),
		PerDataset:  make(map[string]DatasetStats),
	}

	curatedSet := make(map[string]struct{})
	for _, cg := range curated {
		if cg.GeneID != "" {
			curatedSet[cg.GeneID] = struct{}{}
		}
		for _, cat := range cg.Categories {
			cs := s.PerCategory[cat]
			cs.Curated++
			s.PerCategory[cat] = cs
		}
	}
	s.CuratedGenes = len(curatedSet)

	matchedSet := make(map[string]struct{})
	matchedByCat := make(map[string]map[string]struct{})
	genesByDS := make(map[string]map[string]struct{})
	sumByDS := make(map[string]float64)
	countByDS := make(map[string]int)

	for _, m := range matches {
		matchedSet[m.Gene] = struct{}{}

		if matchedByCat[m.Category] == nil {
			matchedByCat[m.Category] = make(map[string]struct{})
		}
		matchedByCat[m.Category][m.Gene] = struct{}{}

		if genesByDS[m.Dataset] == nil {
			genesByDS[m.Dataset] = make(map[string]struct{})
		}
		genesByDS[m.Dataset][m.Gene] = struct{}{}
		sumByDS[m.Dataset] += m.Value
		countByDS[m.Dataset]++
	}
	s.MatchedGenes = len(matchedSet)

	for cat, genes := range matchedByCat {
		cs := s.PerCategory[cat]
		cs.Matched = len(genes)
		s.PerCategory[cat] = cs
	}
	for ds, genes := range genesByDS {
		stats := DatasetStats{Genes: len(genes)}
		if countByDS[ds] > 0 {
			stats.MeanValue = sumByDS[ds] / float64(countByDS[ds])
		}
		s.PerDataset[ds] = stats
	}
	return s
}
