package observability

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionInput  = "input"
	DirectionOutput = "output"
)

var (
	registerOnce sync.Once

	rowsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ytsaurus",
			Subsystem: "skiff",
			Name:      "rows_decoded_total",
			Help:      "Rows decoded from input streams.",
		},
		[]string{"table"},
	)
	rowsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ytsaurus",
			Subsystem: "skiff",
			Name:      "rows_encoded_total",
			Help:      "Rows encoded to output streams.",
		},
		[]string{"table"},
	)
	streamBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ytsaurus",
			Subsystem: "skiff",
			Name:      "stream_bytes_total",
			Help:      "Bytes consumed from or produced to skiff streams.",
		},
		[]string{"direction"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ytsaurus",
			Subsystem: "skiff",
			Name:      "errors_total",
			Help:      "Codec failures by direction and kind.",
		},
		[]string{"direction", "kind"},
	)
	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ytsaurus",
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Mapper job duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(rowsDecoded, rowsEncoded, streamBytes, codecErrors, jobDuration)
	})
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("observability: write metrics %s: %w", path, err)
	}
	return nil
}

func RecordRowDecoded(table int) {
	RegisterMetrics()
	rowsDecoded.WithLabelValues(strconv.Itoa(table)).Inc()
}

func RecordRowEncoded(table int) {
	RegisterMetrics()
	rowsEncoded.WithLabelValues(strconv.Itoa(table)).Inc()
}

func RecordStreamBytes(direction string, n int64) {
	RegisterMetrics()
	if n <= 0 {
		return
	}
	streamBytes.WithLabelValues(direction).Add(float64(n))
}

func RecordCodecError(direction, kind string) {
	RegisterMetrics()
	codecErrors.WithLabelValues(direction, kind).Inc()
}

func RecordJob(duration time.Duration, success bool) {
	RegisterMetrics()
	jobDuration.WithLabelValues(strconv.FormatBool(success)).Observe(duration.Seconds())
}
