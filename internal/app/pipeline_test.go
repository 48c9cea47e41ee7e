package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sgguerra29/tpmScraper/internal/adapters/gprofiler"
	"github.com/sgguerra29/tpmScraper/internal/app"
	"github.com/sgguerra29/tpmScraper/internal/config"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// fakeEnricher records the submitted queries and answers with one fixed
// term per call.
type fakeEnricher struct {
	queries []gprofiler.Query
}

func (f *fakeEnricher) Profile(_ context.Context, q gprofiler.Query) ([]model.TermRecord, error) {
	f.queries = append(f.queries, q)
	return []model.TermRecord{
		{
			TermID:      "GO:0006936",
			Description: "muscle contraction",
			Source:      "GO:BP",
			PValue:      0.001,
			Genes:       q.Genes,
		},
	}, nil
}

// downEnricher fails every call, standing in for a service outage.
type downEnricher struct{}

func (downEnricher) Profile(context.Context, gprofiler.Query) ([]model.TermRecord, error) {
	return nil, gprofiler.ErrService
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func testConfig(root string) *config.Config {
	cfg := config.New()
	cfg.WormseqDir = filepath.Join(root, "spermatheca_cell_types")
	cfg.CengenDir = filepath.Join(root, "cengen")
	cfg.ReferenceDir = filepath.Join(root, "source_cell_types")
	cfg.CuratedGenesFile = filepath.Join(root, "wormMine_actin_myosin_calcium.csv")
	cfg.OutputDir = filepath.Join(root, "combined_datasets")
	cfg.RelativeDir = filepath.Join(root, "w_relative_TPM")
	cfg.EnrichmentDir = filepath.Join(root, "enrichment_results")
	cfg.GeneListDir = filepath.Join(root, "go_genes_list")
	return cfg
}

func seedInputs(t *testing.T, cfg *config.Config) {
	t.Helper()

	writeFile(t, filepath.Join(cfg.WormseqDir, "Spermatheca bag distal.csv"),
		"gene_short_name,scaled_TPM\nsth-1,900\nfln-1,500\nlow-1,100\n")
	writeFile(t, filepath.Join(cfg.WormseqDir, "Spermatheca neck distal.csv"),
		"gene_short_name,scaled_TPM\nsth-1,800\ncal-3,600\n")
	writeFile(t, filepath.Join(cfg.WormseqDir, "Spermatheca-Uterine junction.csv"),
		"gene_short_name,scaled_TPM\nsth-1,700\nfln-1,450\nfln-1,420\n")

	writeFile(t, filepath.Join(cfg.CengenDir, "cengen_spermatheca.csv"),
		"Gene name,Expression level\nsth-1,1000\nunc-1,50\n")
	writeFile(t, filepath.Join(cfg.CengenDir, "cengen_sp_ut.csv"),
		"Gene name,Expression level\nsth-1,650\nfln-1,480\n")

	writeFile(t, filepath.Join(cfg.ReferenceDir, "Spermatheca bag distal.csv"),
		"gene_short_name,scaled_TPM\nsth-1,900\nfln-1,500\ncal-3,300\n")
	writeFile(t, filepath.Join(cfg.ReferenceDir, "Intestine.csv"),
		"gene_short_name,scaled_TPM\nsth-1,200\nfln-1,2000\ncal-3,600\n")

	writeFile(t, cfg.CuratedGenesFile,
		"Gene,WBGene ID,Description\nsth-1,WBGene00001,actin binding protein\nunc-99,WBGene00002,uncharacterized\n")
}

func TestPipeline_Run(t *testing.T) {
	convey.Convey("Given seeded dataset directories", t, func() {
		root := t.TempDir()
		cfg := testConfig(root)
		seedInputs(t, cfg)

		enricher := &fakeEnricher{}
		pipeline := app.New(
			app.WithConfig(cfg),
			app.WithEnricher(enricher),
		)

		convey.Convey("When the pipeline runs end to end", func() {
			err := pipeline.Run(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then filtered tables drop sub-threshold rows", func() {
				filtered := readFile(t, filepath.Join(cfg.WormseqDir, "Spermatheca bag distal_filtered.csv"))
				convey.So(filtered, convey.ShouldContainSubstring, "sth-1")
				convey.So(filtered, convey.ShouldContainSubstring, "fln-1")
				convey.So(filtered, convey.ShouldNotContainSubstring, "low-1")

				cengen := readFile(t, filepath.Join(cfg.CengenDir, "cengen_spermatheca_filtered.csv"))
				convey.So(cengen, convey.ShouldContainSubstring, "sth-1")
				convey.So(cengen, convey.ShouldNotContainSubstring, "unc-1")
			})

			convey.Convey("Then the expression matrices cover every region", func() {
				matrix := readFile(t, filepath.Join(cfg.OutputDir, "scaled_TPM_matrix.csv"))
				convey.So(matrix, convey.ShouldContainSubstring, "Spermatheca bag distal")
				convey.So(matrix, convey.ShouldContainSubstring, "Spermatheca neck distal")
				convey.So(matrix, convey.ShouldContainSubstring, "Spermatheca-Uterine junction")

				_, err := os.Stat(filepath.Join(cfg.OutputDir, "cengen_scaled_TPM_matrix.csv"))
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then bag and neck merge without the junction", func() {
				merged := readFile(t, filepath.Join(cfg.WormseqDir, "merged_wormseq_spermatheca.csv"))
				convey.So(merged, convey.ShouldContainSubstring, "sth-1,900")
				convey.So(merged, convey.ShouldContainSubstring, "cal-3,600")
				// junction-only rows stay out
				convey.So(strings.Count(merged, "\n"), convey.ShouldBeGreaterThan, 2)
			})

			convey.Convey("Then relative expression flags structure-specific genes", func() {
				rel := readFile(t, filepath.Join(cfg.RelativeDir, "Spermatheca bag distal.csv"))
				convey.So(rel, convey.ShouldContainSubstring, "max_in_spermatheca")
				convey.So(rel, convey.ShouldContainSubstring, "sth-1,900")
				convey.So(rel, convey.ShouldContainSubstring, "true")
				// fln-1 peaks in the intestine reference, never flagged
				convey.So(rel, convey.ShouldContainSubstring, "fln-1,500")

				matrix := readFile(t, filepath.Join(cfg.OutputDir, "relative_TPM_matrix.csv"))
				convey.So(matrix, convey.ShouldContainSubstring, "sth-1")
				convey.So(matrix, convey.ShouldNotContainSubstring, "fln-1")
			})

			convey.Convey("Then the comparison matrix spans both datasets", func() {
				cmp := readFile(t, filepath.Join(cfg.OutputDir, "gene_expression_comparison.csv"))
				convey.So(cmp, convey.ShouldContainSubstring, "cengen spermatheca")
				convey.So(cmp, convey.ShouldContainSubstring, "cengen sp_ut")
				convey.So(cmp, convey.ShouldContainSubstring, "wormseq spermatheca")
				convey.So(cmp, convey.ShouldContainSubstring, "wormseq sp_ut")

				common := readFile(t, filepath.Join(cfg.OutputDir, "common_genes_by_regions.csv"))
				convey.So(common, convey.ShouldContainSubstring, "sth-1")
			})

			convey.Convey("Then curated genes cross-reference into matches", func() {
				matches := readFile(t, filepath.Join(cfg.OutputDir, "wormmine_expression_crossref.csv"))
				convey.So(matches, convey.ShouldContainSubstring, "sth-1")
				convey.So(matches, convey.ShouldContainSubstring, "actin")
				convey.So(matches, convey.ShouldNotContainSubstring, "unc-99")

				summary := readFile(t, filepath.Join(cfg.OutputDir, "crossref_summary.txt"))
				convey.So(summary, convey.ShouldContainSubstring, "Curated genes: 2")
				convey.So(summary, convey.ShouldContainSubstring, "actin")
			})

			convey.Convey("Then enrichment queries carry the specific genes", func() {
				convey.So(len(enricher.queries), convey.ShouldBeGreaterThan, 0)
				convey.So(enricher.queries[0].Organism, convey.ShouldEqual, "celegans")
				convey.So(enricher.queries[0].Threshold, convey.ShouldEqual, 0.05)
				convey.So(enricher.queries[0].Genes, convey.ShouldContain, "sth-1")
			})

			convey.Convey("Then the combined enrichment table and gene lists exist", func() {
				combined := readFile(t, filepath.Join(cfg.OutputDir, "combined_spermatheca_enrichment.csv"))
				convey.So(combined, convey.ShouldContainSubstring, "GO:0006936")
				convey.So(combined, convey.ShouldContainSubstring, "Spermatheca bag distal")

				lists := readFile(t, filepath.Join(cfg.GeneListDir, "bag distal_go_genes_lists.csv"))
				convey.So(lists, convey.ShouldContainSubstring, "muscle contraction")
				convey.So(lists, convey.ShouldContainSubstring, "sth-1")
			})
		})

		convey.Convey("When no enrichment service is configured", func() {
			bare := app.New(app.WithConfig(cfg))
			err := bare.Run(context.Background())
			convey.So(err, convey.ShouldBeNil)

			_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "combined_spermatheca_enrichment.csv"))
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := pipeline.Run(ctx)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestPipeline_Run_RecoversStoredResponses(t *testing.T) {
	convey.Convey("Given enrichment responses stored by an earlier run", t, func() {
		root := t.TempDir()
		cfg := testConfig(root)
		seedInputs(t, cfg)

		writeFile(t, filepath.Join(cfg.EnrichmentDir, "Spermatheca bag distal_enrichment_spermatheca.csv"),
			"native,name,source,p_value,region,intersections\n"+
				"GO:0005509,calcium ion binding,GO:MF,0.01,Spermatheca bag distal,sth-1\n")

		pipeline := app.New(
			app.WithConfig(cfg),
			app.WithEnricher(downEnricher{}),
		)

		convey.Convey("When every service call in this run fails", func() {
			err := pipeline.Run(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the stored responses still reach the combined table", func() {
				combined := readFile(t, filepath.Join(cfg.OutputDir, "combined_spermatheca_enrichment.csv"))
				convey.So(combined, convey.ShouldContainSubstring, "GO:0005509")
				convey.So(combined, convey.ShouldContainSubstring, "Spermatheca bag distal")

				lists := readFile(t, filepath.Join(cfg.GeneListDir, "bag distal_go_genes_lists.csv"))
				convey.So(lists, convey.ShouldContainSubstring, "calcium ion binding")
				convey.So(lists, convey.ShouldContainSubstring, "sth-1")
			})
		})
	})
}

func TestPipeline_Run_EmptyWorkspace(t *testing.T) {
	convey.Convey("Given an empty workspace", t, func() {
		cfg := testConfig(t.TempDir())
		pipeline := app.New(app.WithConfig(cfg))

		convey.Convey("When the pipeline runs", func() {
			err := pipeline.Run(context.Background())

			convey.Convey("Then every stage degrades to a logged skip", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
