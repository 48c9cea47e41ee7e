package tablecsv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sgguerra29/tpmScraper/internal/domain/crossref"
	"github.com/sgguerra29/tpmScraper/internal/domain/enrich"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

const dirPermission = 0o750

// writeCSV creates the file (and its directory) and writes all rows.
func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermission); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	// Close errors matter here: a failed close can truncate the table.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTable writes an expression table with the canonical header.
func WriteTable(path string, t model.Table) error {
	rows := make([][]string, 0, len(t.Records)+1)
	rows = append(rows, []string{"gene", "scaled_TPM", "source"})
	for _, r := range t.Records {
		rows = append(rows, []string{r.Gene, formatValue(r.Value), r.Source})
	}
	return writeCSV(path, rows)
}

// WriteRelative writes relative expression records. An undefined relative
// value becomes an empty cell, never zero.
func WriteRelative(path string, recs []model.RelativeRecord) error {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, []string{
		"gene", "scaled_TPM", "source",
		"relative_TPM", "max_in_spermatheca", "max_in_same_component",
	})
	for _, r := range recs {
		rel := ""
		if r.Relative != nil {
			rel = formatValue(*r.Relative)
		}
		rows = append(rows, []string{
			r.Gene, formatValue(r.Value), r.Source,
			rel, strconv.FormatBool(r.MaxInTarget), strconv.FormatBool(r.MaxInComponent),
		})
	}
	return writeCSV(path, rows)
}

// WriteMatrix writes a gene x column matrix; the first column is the gene
// identifier and absent cells stay empty.
func WriteMatrix(path string, m model.Matrix) error {
	rows := make([][]string, 0, len(m.Genes)+1)
	rows = append(rows, append([]string{"gene"}, m.Columns...))
	for _, gene := range m.Genes {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, gene)
		for _, col := range m.Columns {
			if v, ok := m.Get(gene, col); ok {
				row = append(row, formatValue(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// WriteTermRecords writes enrichment terms in the combined-table shape.
// Member genes are comma-joined inside one cell, as the service reports
// them.
func WriteTermRecords(path string, terms []model.TermRecord) error {
	rows := make([][]string, 0, len(terms)+1)
	rows = append(rows, []string{"native", "name", "source", "p_value", "region", "intersections"})
	for _, t := range terms {
		rows = append(rows, []string{
			t.TermID, t.Description, t.Source,
			strconv.FormatFloat(t.PValue, 'g', -1, 64),
			t.Region, strings.Join(t.Genes, ","),
		})
	}
	return writeCSV(path, rows)
}

// ReadTermRecords loads a per-region enrichment response table written by
// WriteTermRecords (region column may be empty for raw responses).
func ReadTermRecords(path string) ([]model.TermRecord, error) {
	header, rows, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	idx := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	native, name, src, pval, region, inter := idx("native"), idx("name"), idx("source"), idx("p_value"), idx("region"), idx("intersections")
	if native < 0 || name < 0 {
		return nil, fmt.Errorf("%w: %s lacks enrichment columns", ErrEmptyInput, path)
	}

	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]model.TermRecord, 0, len(rows))
	for _, row := range rows {
		t := model.TermRecord{
			TermID:      field(row, native),
			Description: field(row, name),
			Source:      field(row, src),
			Region:      field(row, region),
		}
		if p := field(row, pval); p != "" {
			if v, err := strconv.ParseFloat(p, 64); err == nil {
				t.PValue = v
			}
		}
		if genes := field(row, inter); genes != "" {
			t.Genes = strings.Split(genes, ",")
		}
		out = append(out, t)
	}
	return out, nil
}

// WriteTermLists writes the derived per-region gene list file: one row per
// ontology term, member genes semicolon-joined.
func WriteTermLists(path string, lists []enrich.TermList) error {
	rows := make([][]string, 0, len(lists)+1)
	rows = append(rows, []string{"term_id", "description", "gene_count", "genes"})
	for _, l := range lists {
		rows = append(rows, []string{
			l.TermID, l.Description,
			strconv.Itoa(l.GeneCount),
			strings.Join(l.Genes, ";"),
		})
	}
	return writeCSV(path, rows)
}

// WriteMatches writes cross-reference matches, one row per
// (gene, dataset, curated row, category) record.
func WriteMatches(path string, matches []crossref.Match) error {
	rows := make([][]string, 0, len(matches)+1)
	rows = append(rows, []string{"gene", "wbgene_id", "go_description", "functional_category", "dataset", "scaled_TPM"})
	for _, m := range matches {
		rows = append(rows, []string{
			m.Gene, m.WBGeneID, m.Description, m.Category, m.Dataset, formatValue(m.Value),
		})
	}
	return writeCSV(path, rows)
}
