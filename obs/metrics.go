package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	mustRegisterCollector(reg, m.ReqTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.ReqTotal = v
		}
	})
	mustRegisterCollector(reg, m.ReqDur, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.ReqDur = v
		}
	})
	mustRegisterCollector(reg, m.InFlight, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Gauge); ok {
			m.InFlight = v
		}
	})
	return m
}

// EngineMetrics counts commission engine work.
type EngineMetrics struct {
	Calculations *prometheus.CounterVec
	FloorApplied prometheus.Counter
	ReportSales  prometheus.Histogram
}

// NewEngineMetrics registers and returns commission engine collectors.
func NewEngineMetrics(namespace string, reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &EngineMetrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Commission calculations by operation and outcome.",
		}, []string{"operation", "result"}),
		FloorApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "floor_applied_total",
			Help:      "Sales where the minimum commission was paid instead of the rate.",
		}),
		ReportSales: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_sales",
			Help:      "Number of sales per aggregated report.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	mustRegisterCollector(reg, m.Calculations, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.Calculations = v
		}
	})
	mustRegisterCollector(reg, m.FloorApplied, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.FloorApplied = v
		}
	})
	mustRegisterCollector(reg, m.ReportSales, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.ReportSales = v
		}
	})
	return m
}

// ObserveCalculation records one calculate call. A nil receiver is a no-op.
func (m *EngineMetrics) ObserveCalculation(err error, floorApplied bool) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues("calculate", resultLabel(err)).Inc()
	if err == nil && floorApplied {
		m.FloorApplied.Inc()
	}
}

// ObserveReport records one aggregation over sales sales.
func (m *EngineMetrics) ObserveReport(err error, sales, floors int) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues("report", resultLabel(err)).Inc()
	if err != nil {
		return
	}
	m.ReportSales.Observe(float64(sales))
	m.FloorApplied.Add(float64(floors))
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
