package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	exportsTotal     *prometheus.CounterVec
	exportItems      *prometheus.HistogramVec
	togglesTotal     *prometheus.CounterVec
	importsTotal     *prometheus.CounterVec
	importDuration   prometheus.Histogram
	lastImportUnixTS *prometheus.GaugeVec
}

// New registers the schedule collectors on a private registry, with the Go and
// process collectors alongside.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedule",
		Name:      "exports_total",
		Help:      "Schedule exports served, by format",
	}, []string{"format"})
	m.exportItems = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schedule",
		Name:      "export_items",
		Help:      "Items per schedule export, by format",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
	}, []string{"format"})
	m.togglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedule",
		Name:      "favourite_toggles_total",
		Help:      "Favourite toggles, by target type and action",
	}, []string{"target", "action"})
	m.importsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedule",
		Name:      "calendar_imports_total",
		Help:      "Calendar source imports, by source and result",
	}, []string{"source", "result"})
	m.importDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schedule",
		Name:      "calendar_import_duration_seconds",
		Help:      "Time spent importing one calendar source",
	})
	m.lastImportUnixTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "schedule",
		Name:      "calendar_last_import_timestamp_seconds",
		Help:      "Unix time of the last successful import, by source",
	}, []string{"source"})

	m.registry.MustRegister(
		m.exportsTotal, m.exportItems, m.togglesTotal,
		m.importsTotal, m.importDuration, m.lastImportUnixTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Export(format string, items int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
	m.exportItems.WithLabelValues(format).Observe(float64(items))
}

func (m *Metrics) FavouriteToggled(target, action string) {
	if m == nil {
		return
	}
	m.togglesTotal.WithLabelValues(target, action).Inc()
}

func (m *Metrics) Import(source string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.importDuration.Observe(took.Seconds())
	if err != nil {
		m.importsTotal.WithLabelValues(source, "error").Inc()
		return
	}
	m.importsTotal.WithLabelValues(source, "ok").Inc()
	m.lastImportUnixTS.WithLabelValues(source).Set(float64(time.Now().Unix()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
