package service

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"tenderdocs/internal/apperr"
)

// Metrics holds the ingestion counters. A nil *Metrics records nothing.
type Metrics struct {
	uploads        *prometheus.CounterVec
	compensations  *prometheus.CounterVec
	orphansRemoved prometheus.Counter
}

// NewMetrics creates the ingestion counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsvc_uploads_total",
				Help: "Upload attempts by result (ok or lower-cased error kind).",
			},
			[]string{"result"},
		),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsvc_compensations_total",
				Help: "Compensating object deletes after a failed insert, by result.",
			},
			[]string{"result"},
		),
		orphansRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docsvc_orphans_removed_total",
				Help: "Unreferenced objects removed by the orphan sweep.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.uploads, m.compensations, m.orphansRemoved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) upload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(apperr.KindOf(err)))
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) compensation(ok bool) {
	if m == nil {
		return
	}
	result := "succeeded"
	if !ok {
		result = "failed"
	}
	m.compensations.WithLabelValues(result).Inc()
}

func (m *Metrics) orphanRemoved() {
	if m == nil {
		return
	}
	m.orphansRemoved.Inc()
}
