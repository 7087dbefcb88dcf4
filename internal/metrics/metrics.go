package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	BuyIns            *prometheus.CounterVec
	BuyInUnits        *prometheus.CounterVec
	RejectedBuyIns    prometheus.Counter
	BarcodesGenerated prometheus.Counter
}

// New registers all collectors on a private registry so tests can build as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rvmanagement",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rvmanagement",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BuyIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rvmanagement",
			Name:      "buy_ins_total",
			Help:      "Completed buy-ins by mode.",
		}, []string{"mode"}),
		BuyInUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rvmanagement",
			Name:      "buy_in_units_total",
			Help:      "Units added to stock by buy-ins.",
		}, []string{"mode"}),
		RejectedBuyIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvmanagement",
			Name:      "buy_ins_rejected_total",
			Help:      "Buy-in requests rejected by input validation before reaching the repository.",
		}),
		BarcodesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvmanagement",
			Name:      "barcodes_generated_total",
			Help:      "EAN-13 barcodes generated.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.BuyIns,
		m.BuyInUnits,
		m.RejectedBuyIns,
		m.BarcodesGenerated,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
