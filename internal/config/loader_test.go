package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sgguerra29/tpmScraper/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given a clean environment", t, func() {
		t.Setenv("TPMSCRAPER_CONFIG", "")

		// Convey re-runs this block for every leaf, but t.Setenv only
		// restores at the end of the test, so overrides set in one branch
		// would leak into the next. Clear them here to keep branches
		// isolated.
		for _, key := range []string{
			"TPMSCRAPER_EXPRESSION_THRESHOLD",
			"TPMSCRAPER_OUTPUT_DIR",
			"TPMSCRAPER_SIGNIFICANCE_THRESHOLD",
		} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		convey.Convey("When loading with no overrides", func() {
			cfg, err := config.Load(context.Background())

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.ExpressionThreshold, convey.ShouldEqual, 400)
			convey.So(cfg.Organism, convey.ShouldEqual, "celegans")
		})

		convey.Convey("When overriding via environment variables", func() {
			t.Setenv("TPMSCRAPER_EXPRESSION_THRESHOLD", "250")
			t.Setenv("TPMSCRAPER_OUTPUT_DIR", "out")

			cfg, err := config.Load(context.Background())

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.ExpressionThreshold, convey.ShouldEqual, 250)
			convey.So(cfg.OutputDir, convey.ShouldEqual, "out")
		})

		convey.Convey("When loading from a YAML file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "expression_threshold: 100\norganism: dmelanogaster\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			t.Setenv("TPMSCRAPER_CONFIG", path)

			cfg, err := config.Load(context.Background())

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.ExpressionThreshold, convey.ShouldEqual, 100)
			convey.So(cfg.Organism, convey.ShouldEqual, "dmelanogaster")
		})

		convey.Convey("When the environment carries an invalid value", func() {
			t.Setenv("TPMSCRAPER_EXPRESSION_THRESHOLD", "-1")

			_, err := config.Load(context.Background())

			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the significance threshold is out of range", func() {
			t.Setenv("TPMSCRAPER_SIGNIFICANCE_THRESHOLD", "2")

			_, err := config.Load(context.Background())

			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
