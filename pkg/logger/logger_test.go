package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithJSON(true)), ShouldBeNil)
		ctx := context.Background()

		Convey("When an info message is logged with fields", func() {
			Get().Info(ctx, "run finished",
				String("run_id", "r-1"),
				Int("players", 3),
				Bool("served", false),
				Duration("took", time.Second),
			)

			Convey("Then the fields appear in the record", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "run finished")
				So(rec["run_id"], ShouldEqual, "r-1")
				So(rec["players"], ShouldEqual, 3.0)
				So(rec["served"], ShouldEqual, false)
				So(rec["source"], ShouldNotBeEmpty)
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Warn(ctx, "dropped")
			Get().Error(ctx, "kept", Error(errors.New("boom")))

			Convey("Then only the error is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "dropped")
				So(buf.String(), ShouldContainSubstring, "boom")
			})
		})

		Convey("When a named logger is used", func() {
			Named("engine").Info(ctx, "grouped", String("k", "v"))

			Convey("Then its fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, `"engine":{`)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(WithWriter(&bytes.Buffer{})), ShouldBeNil)

		Convey("Then known names are accepted case-insensitively", func() {
			for _, l := range []string{"debug", "INFO", "", "warn", "Warning", "error"} {
				So(SetLevelString(l), ShouldBeNil)
			}
		})

		Convey("Then unknown names are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
