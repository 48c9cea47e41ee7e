// Package enrich prepares region-specific gene lists for ontology
// enrichment and folds the per-region service responses back together.
package enrich

import (
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// FilterTargetSpecific keeps records whose reference maximum lies inside
// the target collection (structure-level specificity).
func FilterTargetSpecific(recs []model.RelativeRecord) []model.RelativeRecord {
	out := make([]model.RelativeRecord, 0, len(recs))
	for _, r := range recs {
		if r.MaxInTarget {
			out = append(out, r)
		}
	}
	return out
}

// FilterComponentSpecific keeps records whose maximum lies in the same
// sub-component as well (component-level specificity).
func FilterComponentSpecific(recs []model.RelativeRecord) []model.RelativeRecord {
	out := make([]model.RelativeRecord, 0, len(recs))
	for _, r := range recs {
		if r.MaxInTarget && r.MaxInComponent {
			out = append(out, r)
		}
	}
	return out
}

// GeneList extracts the unique gene identifiers in record order, dropping
// empties. This is the query submitted to the enrichment service.
func GeneList(recs []model.RelativeRecord) []string {
	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		if r.Gene == "" {
			continue
		}
		if _, ok := seen[r.Gene]; ok {
			continue
		}
		seen[r.Gene] = struct{}{}
		out = append(out, r.Gene)
	}
	return out
}
