// Package model contains domain models passed between pipeline stages.
package model

// Record is one gene's expression measurement in one source region.
// Value is a scaled transcripts-per-million measure and is never negative.
type Record struct {
	Gene   string  // gene identifier (short name or WBGene id)
	Value  float64 // expression value, >= 0
	Source string  // region or dataset tag the value came from
}

// Table is an ordered sequence of records sharing one source tag.
type Table struct {
	Name    string
	Records []Record
}

// Genes returns the gene identifiers in record order.
func (t Table) Genes() []string {
	out := make([]string, 0, len(t.Records))
	for _, r := range t.Records {
		out = append(out, r.Gene)
	}
	return out
}

// GeneSet returns the set of gene identifiers in the table.
func (t Table) GeneSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Records))
	for _, r := range t.Records {
		set[r.Gene] = struct{}{}
	}
	return set
}

// Lookup returns the first record for gene, if present.
func (t Table) Lookup(gene string) (Record, bool) {
	for _, r := range t.Records {
		if r.Gene == gene {
			return r, true
		}
	}
	return Record{}, false
}

// Matrix is a gene x column mapping of expression values. A missing cell
// means the gene was not observed in that column, never zero.
type Matrix struct {
	Genes   []string // row order
	Columns []string // column order
	Values  map[string]map[string]float64
}

// Get returns the value at (gene, column) and whether it is present.
func (m Matrix) Get(gene, column string) (float64, bool) {
	row, ok := m.Values[gene]
	if !ok {
		return 0, false
	}
	v, ok := row[column]
	return v, ok
}

// RelativeRecord extends Record with region-relative specificity fields.
// Relative is nil when the gene is absent from the reference index or the
// reference maximum is not positive.
type RelativeRecord struct {
	Record
	Relative       *float64 // Value / reference max, nil when undefined
	MaxInTarget    bool     // reference max occurs inside the target collection
	MaxInComponent bool     // ... and in the same sub-component group
}

// TermRecord is one ontology term row from the enrichment service,
// tagged with the region whose gene list produced it.
type TermRecord struct {
	TermID      string
	Description string
	Source      string
	Region      string
	PValue      float64
	Genes       []string // member genes in service-reported order
}

// GeneCount returns the number of member genes for the term.
func (t TermRecord) GeneCount() int { return len(t.Genes) }
