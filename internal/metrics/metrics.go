// ABOUTME: Prometheus metrics for playback sessions and decoding
// ABOUTME: Engine callbacks feed these through Hooks
package metrics

import (
	"errors"
	"time"

	"github.com/musics-player/musics-go/pkg/player"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters
var (
	SessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musics_sessions_started_total",
		Help: "Files that started playing",
	})
	StreamsEndedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musics_streams_ended_total",
		Help: "Streams that stopped producing samples, by reason",
	}, []string{"reason"})
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musics_decode_errors_total",
		Help: "Corrupt packets skipped while decoding",
	})
	OpenFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musics_open_failures_total",
		Help: "Files that could not be played, by error kind",
	}, []string{"kind"})
)

// Gauges
var (
	Volume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musics_volume",
		Help: "Current output volume between 0 and 1",
	})
	LibrarySongs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musics_library_songs",
		Help: "Songs found in the last library scan",
	})
)

// Histograms
var (
	TrackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "musics_track_duration_seconds",
		Help:    "Declared length of started tracks",
		Buckets: []float64{30, 60, 120, 180, 240, 300, 420, 600, 1200, 3600},
	})
)

// Hooks fills the engine callbacks, chaining any already set
func Hooks(config player.EngineConfig) player.EngineConfig {
	onStart, onEnd, onDecode := config.OnSessionStart, config.OnStreamEnd, config.OnDecodeError

	config.OnSessionStart = func(path string, d time.Duration) {
		SessionsStartedTotal.Inc()
		TrackDuration.Observe(d.Seconds())
		if onStart != nil {
			onStart(path, d)
		}
	}
	config.OnStreamEnd = func(path string, reason player.EndReason) {
		StreamsEndedTotal.WithLabelValues(reason.String()).Inc()
		if onEnd != nil {
			onEnd(path, reason)
		}
	}
	config.OnDecodeError = func(path string, err error) {
		DecodeErrorsTotal.Inc()
		if onDecode != nil {
			onDecode(path, err)
		}
	}
	return config
}

// ObserveOpenFailure counts a failed PlayFile
func ObserveOpenFailure(err error) {
	var perr *player.Error
	if errors.As(err, &perr) {
		OpenFailuresTotal.WithLabelValues(perr.Kind.String()).Inc()
		return
	}
	OpenFailuresTotal.WithLabelValues("other").Inc()
}
