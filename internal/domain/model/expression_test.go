package model_test

import (
	"testing"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	convey.Convey("Given a table with a few records", t, func() {
		table := model.Table{
			Name: "Spermatheca bag distal",
			Records: []model.Record{
				{Gene: "sth-1", Value: 820.5, Source: "Spermatheca bag distal"},
				{Gene: "fln-1", Value: 412.0, Source: "Spermatheca bag distal"},
			},
		}

		convey.Convey("Then Genes preserves record order", func() {
			convey.So(table.Genes(), convey.ShouldResemble, []string{"sth-1", "fln-1"})
		})

		convey.Convey("Then GeneSet contains every gene", func() {
			set := table.GeneSet()
			convey.So(set, convey.ShouldContainKey, "sth-1")
			convey.So(set, convey.ShouldContainKey, "fln-1")
			convey.So(len(set), convey.ShouldEqual, 2)
		})

		convey.Convey("Then Lookup finds present genes and misses absent ones", func() {
			r, ok := table.Lookup("fln-1")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Value, convey.ShouldEqual, 412.0)

			_, ok = table.Lookup("unc-54")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestMatrix_Get(t *testing.T) {
	convey.Convey("Given a matrix with one present and one absent cell", t, func() {
		m := model.Matrix{
			Genes:   []string{"sth-1"},
			Columns: []string{"bag", "neck"},
			Values: map[string]map[string]float64{
				"sth-1": {"bag": 500},
			},
		}

		convey.Convey("Then a present cell returns its value", func() {
			v, ok := m.Get("sth-1", "bag")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 500)
		})

		convey.Convey("Then an absent cell is reported absent, not zero", func() {
			_, ok := m.Get("sth-1", "neck")
			convey.So(ok, convey.ShouldBeFalse)

			_, ok = m.Get("unc-54", "bag")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestTermRecord_GeneCount(t *testing.T) {
	convey.Convey("Given a term record", t, func() {
		term := model.TermRecord{
			TermID: "GO:0006936",
			Genes:  []string{"mlc-4", "nmy-1", "act-1"},
		}
		convey.So(term.GeneCount(), convey.ShouldEqual, 3)
		convey.So(model.TermRecord{}.GeneCount(), convey.ShouldEqual, 0)
	})
}
