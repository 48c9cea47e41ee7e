// Package aggregate merges per-region tables into gene x region matrices.
package aggregate

import (
	"fmt"
	"sort"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// BuildMatrix outer-joins the tables on gene identity. A gene absent from
// a table maps to an absent cell for that region, never to zero. Rows
// absent from every region are dropped. Column order follows the input
// order; row order is first-seen gene order. When a table carries a gene
// more than once, the maximum value wins.
func BuildMatrix(tables []model.Table) (model.Matrix, error) {
	if len(tables) == 0 {
		return model.Matrix{}, fmt.Errorf("%w: no region tables to aggregate", ErrEmptyInput)
	}

	m := model.Matrix{
		Columns: make([]string, 0, len(tables)),
		Values:  make(map[string]map[string]float64),
	}
	for _, t := range tables {
		m.Columns = append(m.Columns, t.Name)
		for _, r := range t.Records {
			row, ok := m.Values[r.Gene]
			if !ok {
				row = make(map[string]float64, len(tables))
				m.Values[r.Gene] = row
				m.Genes = append(m.Genes, r.Gene)
			}
			if v, ok := row[t.Name]; !ok || r.Value > v {
				row[t.Name] = r.Value
			}
		}
	}
	// Every gene was inserted through some record, so no all-absent rows
	// can exist here; the drop-if-all-missing rule is upheld structurally.
	return m, nil
}

// MergeByMax unions the tables' genes, keeping the maximum value observed
// per gene across all tables, sorted descending by value. This produces the
// merged "whole structure" table used for cross-dataset comparison.
func MergeByMax(tables []model.Table, name string) model.Table {
	best := make(map[string]float64)
	order := make([]string, 0)
	for _, t := range tables {
		for _, r := range t.Records {
			v, seen := best[r.Gene]
			if !seen {
				order = append(order, r.Gene)
			}
			if !seen || r.Value > v {
				best[r.Gene] = r.Value
			}
		}
	}

	records := make([]model.Record, 0, len(order))
	for _, gene := range order {
		records = append(records, model.Record{Gene: gene, Value: best[gene], Source: name})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Value > records[j].Value
	})
	return model.Table{Name: name, Records: records}
}
