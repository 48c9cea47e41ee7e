// Package tablecsv reads and writes the pipeline's tables as CSV files.
// Files are whole-table, one-shot reads and writes; the first row is
// always a header.
package tablecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/sgguerra29/tpmScraper/internal/domain/normalize"
)

// ReadRaw loads a CSV file into a header and data rows. Rows may be ragged;
// downstream column lookups guard their own indices.
func ReadRaw(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: %s has no header", ErrEmptyInput, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// ReadTable loads and normalizes one expression table. The source name
// selects the rename rule; pass normalize.FixedRules to force a known
// column shape.
func ReadTable(path, source string, rules []normalize.Rule) (model.Table, error) {
	header, rows, err := ReadRaw(path)
	if err != nil {
		return model.Table{}, err
	}
	return normalize.Normalize(header, rows, source, rules)
}

// ListCSVFiles returns the .csv files in dir with the given suffix (use
// ".csv" for all), sorted by name. Returns ErrEmptyInput when nothing
// matches and ErrMissingFile when the directory does not exist.
func ListCSVFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no *%s files in %s", ErrEmptyInput, suffix, dir)
	}
	sort.Strings(out)
	return out, nil
}

// BaseName strips the directory and one suffix from a file path, yielding
// the region name encoded in the file name.
func BaseName(path, suffix string) string {
	return strings.TrimSuffix(filepath.Base(path), suffix)
}
