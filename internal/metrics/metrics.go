package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-run counters of the tool in a private registry, so a
// batch run can dump them for the node-exporter textfile collector.
type Metrics struct {
	Registry *prometheus.Registry

	// Files processed, by outcome
	TotalFiles *prometheus.CounterVec

	// Input bytes of successful files
	BytesRead *prometheus.CounterVec

	// Output bytes of successful files
	BytesWritten *prometheus.CounterVec

	// Wall time per file
	Durations *prometheus.HistogramVec
}

func New(prefix string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TotalFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "total_files",
				Help: "Total number of files processed",
			},
			[]string{"op", "status"},
		),
		BytesRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "bytes_read",
				Help: "Total number of input bytes processed",
			},
			[]string{"op"},
		),
		BytesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "bytes_written",
				Help: "Total number of output bytes produced",
			},
			[]string{"op"},
		),
		Durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "file_durations",
				Help:    "Total seconds of durations per file",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"op"},
		),
	}
	m.Registry.MustRegister(m.TotalFiles, m.BytesRead, m.BytesWritten, m.Durations)
	return m
}

// Observe records one finished file.
func (m *Metrics) Observe(op string, read, written int64, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TotalFiles.WithLabelValues(op, status).Inc()
	m.Durations.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		return
	}
	m.BytesRead.WithLabelValues(op).Add(float64(read))
	m.BytesWritten.WithLabelValues(op).Add(float64(written))
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
