// Package normalize maps heterogeneous source columns onto the canonical
// expression schema (gene, value, source).
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// Canonical column names for sources that need no renaming.
const (
	CanonicalGeneColumn  = "gene"
	CanonicalValueColumn = "scaled_TPM"
)

// Spec names the raw columns holding the gene identifier and the
// expression value for one source shape.
type Spec struct {
	GeneColumn  string
	ValueColumn string

	// MergeByMax collapses duplicate genes to the row with the highest
	// value. Required for the sp_ut WormSeq export, which carries one row
	// per cell rather than per gene.
	MergeByMax bool
}

// Rule binds a case-insensitive substring pattern on the source name to a
// rename spec. Rules are evaluated in order; the first match wins.
type Rule struct {
	Pattern string
	Spec    Spec
}

// DefaultRules covers the known dataset shapes. More specific patterns
// come first so that "wormseq sp_ut" is not swallowed by "wormseq".
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "cengen", Spec: Spec{GeneColumn: "Gene name", ValueColumn: "Expression level"}},
		{Pattern: "wormseq spermatheca", Spec: Spec{GeneColumn: "gene_short_name", ValueColumn: "max_scaled_TPM"}},
		{Pattern: "wormseq sp_ut", Spec: Spec{GeneColumn: "gene_short_name", ValueColumn: "scaled_TPM", MergeByMax: true}},
		{Pattern: "wormseq", Spec: Spec{GeneColumn: "gene_short_name", ValueColumn: "scaled_TPM"}},
	}
}

// FixedRules forces one spec for every source; the empty pattern matches
// any name. Used when the caller already knows the table's shape.
func FixedRules(spec Spec) []Rule {
	return []Rule{{Pattern: "", Spec: spec}}
}

// Match returns the spec for the first rule whose pattern is a substring of
// source, or the canonical pass-through spec when nothing matches.
func Match(rules []Rule, source string) Spec {
	lower := strings.ToLower(source)
	for _, r := range rules {
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Spec
		}
	}
	return Spec{GeneColumn: CanonicalGeneColumn, ValueColumn: CanonicalValueColumn}
}

// Normalize converts one raw table into canonical expression records. The
// header names the raw columns; each row must be header-aligned. Rows with
// an empty gene identifier are dropped; unparsable or negative expression
// values fail with ErrSchema.
func Normalize(header []string, rows [][]string, source string, rules []Rule) (model.Table, error) {
	spec := Match(rules, source)

	geneIdx := columnIndex(header, spec.GeneColumn)
	if geneIdx < 0 {
		return model.Table{}, fmt.Errorf("%w: source %q has no column %q", ErrSchema, source, spec.GeneColumn)
	}
	valueIdx := columnIndex(header, spec.ValueColumn)
	if valueIdx < 0 {
		return model.Table{}, fmt.Errorf("%w: source %q has no column %q", ErrSchema, source, spec.ValueColumn)
	}

	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		if geneIdx >= len(row) || valueIdx >= len(row) {
			return model.Table{}, fmt.Errorf("%w: source %q row %d is short", ErrSchema, source, i+1)
		}
		gene := strings.TrimSpace(row[geneIdx])
		if gene == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			return model.Table{}, fmt.Errorf("%w: source %q row %d: bad value %q", ErrSchema, source, i+1, row[valueIdx])
		}
		if value < 0 {
			return model.Table{}, fmt.Errorf("%w: source %q row %d: negative value %q", ErrSchema, source, i+1, row[valueIdx])
		}
		records = append(records, model.Record{Gene: gene, Value: value, Source: source})
	}

	if spec.MergeByMax {
		records = mergeByMax(records)
	}
	return model.Table{Name: source, Records: records}, nil
}

// mergeByMax collapses duplicate genes, keeping the maximum value and the
// first-occurrence order.
func mergeByMax(records []model.Record) []model.Record {
	index := make(map[string]int, len(records))
	out := records[:0]
	for _, r := range records {
		if i, seen := index[r.Gene]; seen {
			if r.Value > out[i].Value {
				out[i].Value = r.Value
			}
			continue
		}
		index[r.Gene] = len(out)
		out = append(out, r)
	}
	return out
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
