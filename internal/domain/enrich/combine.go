package enrich

import (
	"fmt"
	"sort"
	"strings"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// Combine concatenates per-region enrichment responses into one table,
// tagging every term with its region of origin. Regions are emitted in
// sorted name order so the combined table is deterministic.
func Combine(perRegion map[string][]model.TermRecord) ([]model.TermRecord, error) {
	if len(perRegion) == 0 {
		return nil, fmt.Errorf("%w: no enrichment results to combine", ErrEmptyInput)
	}

	regions := make([]string, 0, len(perRegion))
	for region := range perRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var out []model.TermRecord
	for _, region := range regions {
		for _, term := range perRegion[region] {
			term.Region = region
			out = append(out, term)
		}
	}
	return out, nil
}

// TermList is the per-term gene breakdown written to the derived list
// files: one row per ontology term with its member genes.
type TermList struct {
	TermID      string
	Description string
	GeneCount   int
	Genes       []string
}

// ListsByRegion fans the combined table back out into per-region term
// lists, preserving the service-reported gene order within each term.
func ListsByRegion(combined []model.TermRecord) map[string][]TermList {
	out := make(map[string][]TermList)
	for _, term := range combined {
		region := CleanRegionName(term.Region)
		out[region] = append(out[region], TermList{
			TermID:      term.TermID,
			Description: term.Description,
			GeneCount:   term.GeneCount(),
			Genes:       term.Genes,
		})
	}
	return out
}

// CleanRegionName strips the structure prefix from a region name so file
// names stay short ("Spermatheca bag distal" -> "bag distal").
func CleanRegionName(region string) string {
	return strings.TrimPrefix(region, "Spermatheca ")
}
