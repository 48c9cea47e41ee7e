package aggregate_test

import (
	"errors"
	"testing"

	"github.com/sgguerra29/tpmScraper/internal/domain/aggregate"
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBuildMatrix(t *testing.T) {
	convey.Convey("Given two region tables with partial overlap", t, func() {
		bag := model.Table{Name: "bag distal", Records: []model.Record{
			{Gene: "sth-1", Value: 900},
			{Gene: "fln-1", Value: 450},
		}}
		neck := model.Table{Name: "neck distal", Records: []model.Record{
			{Gene: "sth-1", Value: 300},
			{Gene: "mlc-4", Value: 600},
		}}

		convey.Convey("When building the matrix", func() {
			m, err := aggregate.BuildMatrix([]model.Table{bag, neck})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then columns follow input order", func() {
				convey.So(m.Columns, convey.ShouldResemble, []string{"bag distal", "neck distal"})
			})

			convey.Convey("Then rows are first-seen gene order", func() {
				convey.So(m.Genes, convey.ShouldResemble, []string{"sth-1", "fln-1", "mlc-4"})
			})

			convey.Convey("Then shared genes carry both values", func() {
				v, ok := m.Get("sth-1", "bag distal")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 900)
				v, ok = m.Get("sth-1", "neck distal")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 300)
			})

			convey.Convey("Then a gene missing from a region is absent, not zero", func() {
				_, ok := m.Get("fln-1", "neck distal")
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then every gene appears in at least one region", func() {
				for _, gene := range m.Genes {
					present := 0
					for _, col := range m.Columns {
						if _, ok := m.Get(gene, col); ok {
							present++
						}
					}
					convey.So(present, convey.ShouldBeGreaterThan, 0)
				}
			})
		})

		convey.Convey("When a table repeats a gene", func() {
			dup := model.Table{Name: "bag distal", Records: []model.Record{
				{Gene: "sth-1", Value: 100},
				{Gene: "sth-1", Value: 800},
			}}
			m, err := aggregate.BuildMatrix([]model.Table{dup})
			convey.So(err, convey.ShouldBeNil)

			v, _ := m.Get("sth-1", "bag distal")
			convey.So(v, convey.ShouldEqual, 800)
		})

		convey.Convey("When no tables are given", func() {
			_, err := aggregate.BuildMatrix(nil)
			convey.So(errors.Is(err, aggregate.ErrEmptyInput), convey.ShouldBeTrue)
		})
	})
}

func TestMergeByMax(t *testing.T) {
	convey.Convey("Given region tables sharing genes", t, func() {
		tables := []model.Table{
			{Name: "neck distal", Records: []model.Record{
				{Gene: "sth-1", Value: 500},
				{Gene: "fln-1", Value: 450},
			}},
			{Name: "neck proximal", Records: []model.Record{
				{Gene: "sth-1", Value: 1200},
				{Gene: "nmy-1", Value: 410},
			}},
		}

		merged := aggregate.MergeByMax(tables, "wormseq spermatheca")

		convey.Convey("Then each gene keeps its maximum across tables", func() {
			convey.So(len(merged.Records), convey.ShouldEqual, 3)
			r, ok := merged.Lookup("sth-1")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Value, convey.ShouldEqual, 1200)
		})

		convey.Convey("Then records are sorted descending by value", func() {
			convey.So(merged.Records[0].Gene, convey.ShouldEqual, "sth-1")
			convey.So(merged.Records[1].Gene, convey.ShouldEqual, "fln-1")
			convey.So(merged.Records[2].Gene, convey.ShouldEqual, "nmy-1")
		})

		convey.Convey("Then records carry the merged table name as source", func() {
			for _, r := range merged.Records {
				convey.So(r.Source, convey.ShouldEqual, "wormseq spermatheca")
			}
		})
	})

	convey.Convey("Given no tables", t, func() {
		merged := aggregate.MergeByMax(nil, "empty")
		convey.So(merged.Records, convey.ShouldBeEmpty)
	})
}
