package backend_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/adapters/storage/backend"
	"github.com/okian/elorank/internal/adapters/storage/csvfile"
	"github.com/okian/elorank/internal/adapters/storage/sqlite"
	"github.com/okian/elorank/internal/adapters/storage/xlsx"
	"github.com/okian/elorank/internal/config"
	"github.com/okian/elorank/internal/domain/rating"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewSource(t *testing.T) {
	convey.Convey("Given each supported kind", t, func() {
		csvSrc, err := backend.NewSource(config.KindCSV, "m.csv", "")
		convey.So(err, convey.ShouldBeNil)
		convey.So(csvSrc, convey.ShouldHaveSameTypeAs, &csvfile.Source{})

		xlsxSrc, err := backend.NewSource(config.KindXLSX, "m.xlsx", "matches")
		convey.So(err, convey.ShouldBeNil)
		convey.So(xlsxSrc, convey.ShouldHaveSameTypeAs, &xlsx.Source{})

		sqlSrc, err := backend.NewSource(config.KindSQLite, "m.db", "matches")
		convey.So(err, convey.ShouldBeNil)
		convey.So(sqlSrc, convey.ShouldHaveSameTypeAs, &sqlite.Source{})
	})

	convey.Convey("Given an unknown kind", t, func() {
		_, err := backend.NewSource("parquet", "m.parquet", "")
		convey.So(errors.Is(err, storage.ErrUnsupportedKind), convey.ShouldBeTrue)
	})
}

func TestNewSink(t *testing.T) {
	convey.Convey("Given each supported kind", t, func() {
		for kind, want := range map[string]any{
			config.KindCSV:    &csvfile.Sink{},
			config.KindXLSX:   &xlsx.Sink{},
			config.KindSQLite: &sqlite.Sink{},
		} {
			sink, err := backend.NewSink(kind, "out", "rankings")
			convey.So(err, convey.ShouldBeNil)
			convey.So(sink, convey.ShouldHaveSameTypeAs, want)
		}
	})

	convey.Convey("Given an unknown kind", t, func() {
		_, err := backend.NewSink("json", "out.json", "")
		convey.So(errors.Is(err, storage.ErrUnsupportedKind), convey.ShouldBeTrue)
	})
}

func TestFromConfig(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		src, sink, err := backend.FromConfig(config.New())

		convey.Convey("Then a csv source and sink are built", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(src, convey.ShouldHaveSameTypeAs, &csvfile.Source{})
			convey.So(sink, convey.ShouldHaveSameTypeAs, &csvfile.Sink{})
		})
	})

	convey.Convey("Given a bad sink kind", t, func() {
		cfg := config.New()
		cfg.SinkKind = "bogus"
		_, _, err := backend.FromConfig(cfg)
		convey.So(errors.Is(err, storage.ErrUnsupportedKind), convey.ShouldBeTrue)
	})
}

func TestFromConfigDelimiter(t *testing.T) {
	convey.Convey("Given a csv config with a semicolon delimiter", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.New()
		cfg.CSVComma = ";"
		cfg.SourcePath = filepath.Join(dir, "matches.csv")
		cfg.SinkPath = filepath.Join(dir, "rankings.csv")
		convey.So(os.WriteFile(cfg.SourcePath, []byte("player_1;player_2;player_1_result;player_2_result\na;b;1;0\n"), 0o600), convey.ShouldBeNil)

		src, sink, err := backend.FromConfig(cfg)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the source splits on it", func() {
			matches, err := src.ReadMatches(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(matches, convey.ShouldHaveLength, 1)
			convey.So(matches[0].PlayerB, convey.ShouldEqual, "b")
		})

		convey.Convey("Then the sink writes with it", func() {
			table, err := rating.ComputeRankings(nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(sink.WriteRankings(ctx, table), convey.ShouldBeNil)

			raw, err := os.ReadFile(cfg.SinkPath)
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.TrimSpace(string(raw)), convey.ShouldEqual, strings.Join(storage.OutputHeader, ";"))
		})
	})
}
