// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

// Config contains process configuration for one pipeline run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WormseqDir holds the per-region WormSeq spermatheca CSV files.
	WormseqDir string `koanf:"wormseq_dir"`

	// CengenDir holds the per-region CeNGEN CSV files.
	CengenDir string `koanf:"cengen_dir"`

	// ReferenceDir holds the whole-organism cell-type CSV files used to
	// build the reference expression index.
	ReferenceDir string `koanf:"reference_dir"`

	// CuratedGenesFile is the curated gene-function table (WormMine export).
	CuratedGenesFile string `koanf:"curated_genes_file"`

	// OutputDir receives matrices, comparison and cross-reference tables.
	OutputDir string `koanf:"output_dir"`

	// RelativeDir receives per-region relative expression tables.
	RelativeDir string `koanf:"relative_dir"`

	// EnrichmentDir receives per-region enrichment inputs and responses.
	EnrichmentDir string `koanf:"enrichment_dir"`

	// GeneListDir receives the per-region, per-term gene list files.
	GeneListDir string `koanf:"gene_list_dir"`

	// ExpressionThreshold is the exclusive lower bound on expression values.
	ExpressionThreshold float64 `koanf:"expression_threshold"`

	// SignificanceThreshold is passed to the enrichment service.
	SignificanceThreshold float64 `koanf:"significance_threshold"`

	// Organism is the enrichment service organism identifier.
	Organism string `koanf:"organism"`

	// OntologySources filters the enrichment response by term source.
	OntologySources []string `koanf:"ontology_sources"`

	// EnrichmentURL is the base URL of the enrichment service.
	EnrichmentURL string `koanf:"enrichment_url"`

	// RequestTimeoutSec bounds each enrichment service request.
	RequestTimeoutSec int `koanf:"request_timeout_sec"`

	// MetricsAddr, when non-empty, serves /metrics during the run.
	MetricsAddr string `koanf:"metrics_addr"`
}

// Default values for a run against the conventional directory layout.
const (
	defaultExpressionThreshold   = 400
	defaultSignificanceThreshold = 0.05
	defaultRequestTimeoutSec     = 60
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		WormseqDir:            "spermatheca_cell_types",
		CengenDir:             "cengen",
		ReferenceDir:          "source_cell_types",
		CuratedGenesFile:      "wormMine_actin_myosin_calcium.csv",
		OutputDir:             "combined_datasets",
		RelativeDir:           "w_relative_TPM",
		EnrichmentDir:         "enrichment_results",
		GeneListDir:           "go_genes_list",
		ExpressionThreshold:   defaultExpressionThreshold,
		SignificanceThreshold: defaultSignificanceThreshold,
		Organism:              "celegans",
		OntologySources:       []string{"GO:BP", "GO:MF", "GO:CC"},
		EnrichmentURL:         "https://biit.cs.ut.ee/gprofiler",
		RequestTimeoutSec:     defaultRequestTimeoutSec,
		MetricsAddr:           "",
	}
}
