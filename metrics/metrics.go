// Package metrics exposes http traffic and directory size to prometheus
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.fyyur.app/fyyur/db"
)

const namespace = "fyyur"

type StatsFunc func() (db.Stats, error)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New(stats StatsFunc) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		newDirectoryCollector(stats),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Observe(route, method string, code int, took time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(took.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type directoryCollector struct {
	stats   StatsFunc
	venues  *prometheus.Desc
	artists *prometheus.Desc
	shows   *prometheus.Desc
}

func newDirectoryCollector(stats StatsFunc) *directoryCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &directoryCollector{
		stats:   stats,
		venues:  desc("venues", "Number of listed venues"),
		artists: desc("artists", "Number of listed artists"),
		shows:   desc("shows", "Number of listed shows"),
	}
}

func (c *directoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.venues
	ch <- c.artists
	ch <- c.shows
}

func (c *directoryCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.stats()
	if err != nil {
		slog.Error("collecting directory stats", "err", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.venues, prometheus.GaugeValue, float64(stats.Venues))
	ch <- prometheus.MustNewConstMetric(c.artists, prometheus.GaugeValue, float64(stats.Artists))
	ch <- prometheus.MustNewConstMetric(c.shows, prometheus.GaugeValue, float64(stats.Shows))
}
