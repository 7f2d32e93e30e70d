package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it registers its collectors there", func() {
				So(manager, ShouldNotBeNil)
				manager.matchesProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("engine"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.playersTotal.Set(4)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_engine_players_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "elorank")
				So(manager.subsystem, ShouldEqual, "ratings")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When matches are processed", func() {
			before := testutil.ToFloat64(globalManager.matchesProcessed)
			RecordMatchProcessed(20)
			RecordMatchProcessed(12.5)

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.matchesProcessed)-before, ShouldEqual, 2)
			})
		})

		Convey("When a run is recorded", func() {
			before := testutil.ToFloat64(globalManager.runsTotal.WithLabelValues("ok"))
			RecordRun("ok", 12)
			UpdateLastRun(1_700_000_000, 42)
			UpdatePlayersTotal(7)

			Convey("Then run gauges reflect it", func() {
				So(testutil.ToFloat64(globalManager.runsTotal.WithLabelValues("ok"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.lastRunMatches), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.playersTotal), ShouldEqual, 7)
			})
		})

		Convey("When storage traffic is recorded", func() {
			before := testutil.ToFloat64(globalManager.recordsRead.WithLabelValues("csv"))
			RecordSourceRead("csv", 10, 1.5)
			RecordSinkWrite("csv", 4, 0.5)

			Convey("Then per-backend counters advance", func() {
				So(testutil.ToFloat64(globalManager.recordsRead.WithLabelValues("csv"))-before, ShouldEqual, 10)
			})
		})

		Convey("When other recorders are called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordInvalidRecord()
					IncrementSnapshotsPublished()
					RecordRepositoryQueryLatency(0.2)
					RecordHTTPRequest("rankings", "GET", "200")
					RecordHTTPRequestDuration("rankings", "GET", "200", 3)
					RecordErrorByComponent("storage", "malformed_row")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry can be gathered", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup

		Convey("Then recording is safe", func() {
			So(func() {
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for j := 0; j < 100; j++ {
							RecordMatchProcessed(float64(j % 40))
							RecordHTTPRequest("rank", "GET", "200")
						}
					}()
				}
				wg.Wait()
			}, ShouldNotPanic)
		})
	})
}
