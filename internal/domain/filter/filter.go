// Package filter retains highly expressed genes from a region table.
package filter

import (
	"sort"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// DefaultThreshold is the conventional scaled-TPM cutoff.
const DefaultThreshold = 400

// Apply keeps records whose value strictly exceeds threshold and returns
// them sorted descending by value. The sort is stable, so ties keep their
// original order. The input table is not modified.
func Apply(t model.Table, threshold float64) model.Table {
	kept := make([]model.Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.Value > threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Value > kept[j].Value
	})
	return model.Table{Name: t.Name, Records: kept}
}
