package xlsx_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/adapters/storage/xlsx"
	"github.com/okian/elorank/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func readSheet(path, sheet string) ([][]string, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	return rows, f.GetSheetList(), err
}

func TestSource(t *testing.T) {
	Convey("Given a workbook with a match sheet", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "league.xlsx")
		writeWorkbook(t, path, "matches", [][]any{
			{"player_1", "player_2", "player_1_result", "player_2_result", "date"},
			{"alice", "bob", 1, 0, "2024-02-01"},
			{},
			{"bob", "carol", 0, 1, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		})

		Convey("When the sheet is read by name", func() {
			matches, err := xlsx.NewSource(path, "matches").ReadMatches(ctx)

			Convey("Then rows come back in order with numeric results", func() {
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 2)
				So(matches[0].Winner(), ShouldEqual, "alice")
				So(matches[1].Winner(), ShouldEqual, "carol")
			})

			Convey("Then text and native dates are both understood", func() {
				So(matches[0].Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(matches[1].Date, ShouldNotBeNil)
				So(matches[1].Date.Format("2006-01-02"), ShouldEqual, "2024-02-03")
			})
		})

		Convey("When no sheet name is given", func() {
			matches, err := xlsx.NewSource(path, "").ReadMatches(ctx)

			Convey("Then the first sheet is used", func() {
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 2)
			})
		})

		Convey("When the sheet does not exist", func() {
			_, err := xlsx.NewSource(path, "nope").ReadMatches(ctx)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a workbook without the result columns", t, func() {
		path := filepath.Join(t.TempDir(), "bad.xlsx")
		writeWorkbook(t, path, "matches", [][]any{{"player_1", "player_2"}, {"a", "b"}})

		_, err := xlsx.NewSource(path, "matches").ReadMatches(context.Background())

		Convey("Then the missing column is reported", func() {
			So(errors.Is(err, storage.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestSink(t *testing.T) {
	Convey("Given a ranking table", t, func() {
		ctx := context.Background()
		table := rating.Table{
			{Rank: 1, Player: "alice", Rating: 1020, GamesPlayed: 1, Wins: 1, WinRate: 100},
			{Rank: 2, Player: "bob", Rating: 980, GamesPlayed: 1, Losses: 1},
			{Rank: 3, Player: "carol", Rating: 1000},
		}

		Convey("When it is written to a new workbook", func() {
			path := filepath.Join(t.TempDir(), "out", "rankings.xlsx")
			So(xlsx.NewSink(path, "Ranking").WriteRankings(ctx, table), ShouldBeNil)

			Convey("Then the sheet holds the header and one row per player", func() {
				rows, sheets, err := readSheet(path, "Ranking")
				So(err, ShouldBeNil)
				So(sheets, ShouldResemble, []string{"Ranking"})
				So(rows, ShouldHaveLength, 4)
				So(rows[0][0], ShouldEqual, "Player")
				So(rows[1][0], ShouldEqual, "alice")
				So(rows[3][0], ShouldEqual, "carol")
			})

			Convey("Then a smaller table shrinks the sheet", func() {
				So(xlsx.NewSink(path, "Ranking").WriteRankings(ctx, table[:1]), ShouldBeNil)
				rows, _, err := readSheet(path, "Ranking")
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
			})
		})

		Convey("When it is written into an existing workbook", func() {
			path := filepath.Join(t.TempDir(), "league.xlsx")
			writeWorkbook(t, path, "matches", [][]any{
				{"player_1", "player_2", "player_1_result", "player_2_result"},
				{"alice", "bob", 1, 0},
			})
			So(xlsx.NewSink(path, "").WriteRankings(ctx, table), ShouldBeNil)

			Convey("Then the other sheets are preserved", func() {
				rows, sheets, err := readSheet(path, "Rankings")
				So(err, ShouldBeNil)
				So(sheets, ShouldContain, "matches")
				So(sheets, ShouldContain, "Rankings")
				So(rows, ShouldHaveLength, 4)

				matches, err := xlsx.NewSource(path, "matches").ReadMatches(ctx)
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 1)
			})
		})
	})
}
