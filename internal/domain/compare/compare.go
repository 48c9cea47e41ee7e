// Package compare builds the cross-dataset comparison matrix and the
// set-membership views behind overlap statistics.
package compare

import (
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// Pivot builds a gene x source matrix from normalized tables. A duplicate
// (gene, source) pair keeps the maximum value.
func Pivot(tables []model.Table) model.Matrix {
	m := model.Matrix{Values: make(map[string]map[string]float64)}
	for _, t := range tables {
		m.Columns = append(m.Columns, t.Name)
		for _, r := range t.Records {
			row, ok := m.Values[r.Gene]
			if !ok {
				row = make(map[string]float64)
				m.Values[r.Gene] = row
				m.Genes = append(m.Genes, r.Gene)
			}
			if v, ok := row[t.Name]; !ok || r.Value > v {
				row[t.Name] = r.Value
			}
		}
	}
	return m
}

// GroupGenes returns the genes with at least one present value among the
// named columns.
func GroupGenes(m model.Matrix, columns []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, gene := range m.Genes {
		for _, col := range columns {
			if _, ok := m.Get(gene, col); ok {
				set[gene] = struct{}{}
				break
			}
		}
	}
	return set
}

// Overlap summarizes how two gene sets relate.
type Overlap struct {
	Intersection int
	Union        int
	OnlyA        int
	OnlyB        int
}

// ComputeOverlap derives the overlap statistics for two gene sets.
func ComputeOverlap(a, b map[string]struct{}) Overlap {
	var o Overlap
	for g := range a {
		if _, ok := b[g]; ok {
			o.Intersection++
		} else {
			o.OnlyA++
		}
	}
	o.OnlyB = len(b) - o.Intersection
	o.Union = o.OnlyA + o.OnlyB + o.Intersection
	return o
}

// CommonRows restricts the matrix to genes present in every required
// column, preserving row and column order. This is the common-genes
// subtable consumed by the comparative heatmap.
func CommonRows(m model.Matrix, required []string) model.Matrix {
	out := model.Matrix{
		Columns: m.Columns,
		Values:  make(map[string]map[string]float64),
	}
	for _, gene := range m.Genes {
		all := true
		for _, col := range required {
			if _, ok := m.Get(gene, col); !ok {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		out.Genes = append(out.Genes, gene)
		out.Values[gene] = m.Values[gene]
	}
	return out
}
