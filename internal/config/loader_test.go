package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/elorank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.SourcePath, convey.ShouldEqual, "input/matches.csv")
				convey.So(cfg.SinkPath, convey.ShouldEqual, "output/rankings.csv")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ELORANK_ADDR", ":8080")
			_ = os.Setenv("ELORANK_SERVE", "true")
			_ = os.Setenv("ELORANK_SOURCE_KIND", "xlsx")
			_ = os.Setenv("ELORANK_SOURCE_PATH", "/data/matches.xlsx")
			_ = os.Setenv("ELORANK_K_MAX", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Serve, convey.ShouldBeTrue)
				convey.So(cfg.SourceKind, convey.ShouldEqual, "xlsx")
				convey.So(cfg.SourcePath, convey.ShouldEqual, "/data/matches.xlsx")
				convey.So(cfg.KMax, convey.ShouldEqual, 32.0)
				convey.So(cfg.KMin, convey.ShouldEqual, 20.0)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
# ranking job
source_kind: sqlite
source_path: /data/league.db
source_sheet: matches
sink_kind: xlsx
sink_path: /data/out.xlsx
sink_sheet: Ranking
initial_rating: 1500
`)
			_ = os.Setenv("ELORANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SourceKind, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SourcePath, convey.ShouldEqual, "/data/league.db")
				convey.So(cfg.SinkKind, convey.ShouldEqual, "xlsx")
				convey.So(cfg.SinkSheet, convey.ShouldEqual, "Ranking")
				convey.So(cfg.InitialRating, convey.ShouldEqual, 1500.0)
				convey.So(cfg.KMax, convey.ShouldEqual, 40.0) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
sink_path: /data/from-file.csv
k_min: 16
`)
			_ = os.Setenv("ELORANK_CONFIG", tmpFile)
			_ = os.Setenv("ELORANK_SINK_PATH", "/data/from-env.csv")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SinkPath, convey.ShouldEqual, "/data/from-env.csv")
				convey.So(cfg.KMin, convey.ShouldEqual, 16.0)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("ELORANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ELORANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ELORANK_K_MIN", "twenty")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When serving with an empty addr", func() {
			_ = os.Setenv("ELORANK_SERVE", "true")
			_ = os.Setenv("ELORANK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the source kind is unknown", func() {
			_ = os.Setenv("ELORANK_SOURCE_KIND", "gsheet")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ELORANK_CONFIG",
		"ELORANK_ADDR",
		"ELORANK_SERVE",
		"ELORANK_SOURCE_KIND",
		"ELORANK_SOURCE_PATH",
		"ELORANK_SINK_PATH",
		"ELORANK_K_MIN",
		"ELORANK_K_MAX",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	tmpFile, err := os.CreateTemp(t.TempDir(), "elorank-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
