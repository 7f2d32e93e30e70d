package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/elorank/internal/domain/rating"
	types "github.com/okian/elorank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromRow(t *testing.T) {
	Convey("Given a ranking row with a last played date", t, func() {
		ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CET", 3600))
		row := rating.Row{
			Rank: 2, Player: "alice", Rating: 1012.34,
			GamesPlayed: 4, Wins: 3, Losses: 1, WinRate: 75, LastPlayed: &ts,
		}

		Convey("When converting it to an entry", func() {
			entry := types.FromRow(row)

			Convey("Then every field is carried over", func() {
				So(entry.Rank, ShouldEqual, 2)
				So(entry.Player, ShouldEqual, "alice")
				So(entry.Rating, ShouldEqual, 1012.34)
				So(entry.GamesPlayed, ShouldEqual, 4)
				So(entry.Wins, ShouldEqual, 3)
				So(entry.Losses, ShouldEqual, 1)
				So(entry.WinRate, ShouldEqual, 75.0)
			})

			Convey("Then the date is rendered in UTC", func() {
				So(entry.LastPlayed, ShouldEqual, "2024-05-06T06:08:09Z")
			})
		})
	})

	Convey("Given a row without a date", t, func() {
		entry := types.FromRow(rating.Row{Rank: 1, Player: "bob", Rating: 1000})

		Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then last_played is omitted", func() {
				So(string(raw), ShouldNotContainSubstring, "last_played")
				So(string(raw), ShouldContainSubstring, `"player":"bob"`)
				So(string(raw), ShouldContainSubstring, `"games_played":0`)
			})
		})
	})
}

func TestFromRows(t *testing.T) {
	Convey("Given several rows", t, func() {
		rows := []rating.Row{
			{Rank: 1, Player: "a", Rating: 1010},
			{Rank: 2, Player: "b", Rating: 1000},
			{Rank: 3, Player: "c", Rating: 990},
		}

		Convey("Then order and ranks are preserved", func() {
			entries := types.FromRows(rows)
			So(entries, ShouldHaveLength, 3)
			for i, e := range entries {
				So(e.Rank, ShouldEqual, i+1)
				So(e.Player, ShouldEqual, rows[i].Player)
			}
		})

		Convey("Then an empty input gives an empty, non-nil slice", func() {
			entries := types.FromRows(nil)
			So(entries, ShouldNotBeNil)
			So(entries, ShouldBeEmpty)
		})
	})
}
