package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Uploads        *prometheus.CounterVec
	Downloads      prometheus.Counter
	DownloadDenied *prometheus.CounterVec
	Renames        prometheus.Counter
	Deletes        prometheus.Counter
	StorageErrors  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "uploads_total",
			Help:      "Files uploaded, by storage category.",
		}, []string{"category"}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "downloads_total",
			Help:      "Downloads granted.",
		}),
		DownloadDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "download_denied_total",
			Help:      "Downloads refused, by reason.",
		}, []string{"reason"}),
		Renames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "renames_total",
			Help:      "Files renamed.",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "deletes_total",
			Help:      "Files deleted.",
		}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "storage_errors_total",
			Help:      "Object storage failures, by operation.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(m.Uploads, m.Downloads, m.DownloadDenied, m.Renames, m.Deletes, m.StorageErrors)
	}
	return m
}

func (m *Metrics) Upload(category string) {
	if m != nil {
		m.Uploads.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) Download() {
	if m != nil {
		m.Downloads.Inc()
	}
}

func (m *Metrics) Denied(reason string) {
	if m != nil {
		m.DownloadDenied.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Rename() {
	if m != nil {
		m.Renames.Inc()
	}
}

func (m *Metrics) Delete() {
	if m != nil {
		m.Deletes.Inc()
	}
}

func (m *Metrics) StorageError(op string) {
	if m != nil {
		m.StorageErrors.WithLabelValues(op).Inc()
	}
}
