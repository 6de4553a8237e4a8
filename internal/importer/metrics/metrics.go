package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts spreadsheet rows by record kind and outcome.
type Metrics struct {
	RowsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rpscreen_import_rows_total",
			Help: "Spreadsheet rows processed by import, by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

// ObserveImport records one processed sheet.
func (m *Metrics) ObserveImport(kind string, imported, failed int) {
	m.RowsTotal.WithLabelValues(kind, "imported").Add(float64(imported))
	m.RowsTotal.WithLabelValues(kind, "failed").Add(float64(failed))
}
