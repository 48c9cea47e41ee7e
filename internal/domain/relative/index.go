// Package relative computes region-relative expression and the two-level
// specificity flags used to decide which genes are region-restricted.
package relative

import (
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// RefEntry records where a gene's maximum expression was observed.
type RefEntry struct {
	Value  float64
	Source string // name of the reference table holding the maximum
}

// Index maps each gene to its maximum observed expression across the
// reference collection. Built once per run, read-only afterwards.
type Index map[string]RefEntry

// BuildIndex scans every reference table and retains, per gene, the single
// highest value and the table it came from. Ties on value go to the
// lexically smaller table name, so the index does not depend on the order
// the reference tables are supplied in.
func BuildIndex(tables []model.Table) Index {
	idx := make(Index)
	for _, t := range tables {
		for _, r := range t.Records {
			cur, seen := idx[r.Gene]
			switch {
			case !seen:
				idx[r.Gene] = RefEntry{Value: r.Value, Source: t.Name}
			case r.Value > cur.Value:
				idx[r.Gene] = RefEntry{Value: r.Value, Source: t.Name}
			case r.Value == cur.Value && t.Name < cur.Source:
				idx[r.Gene] = RefEntry{Value: r.Value, Source: t.Name}
			}
		}
	}
	return idx
}
