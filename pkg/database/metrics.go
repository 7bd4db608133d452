package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolStatsCollector exports pgxpool connection statistics as Prometheus
// metrics.
type poolStatsCollector struct {
	pool    *pgxpool.Pool
	service string

	acquired  *prometheus.Desc
	idle      *prometheus.Desc
	total     *prometheus.Desc
	max       *prometheus.Desc
	acquires  *prometheus.Desc
	waitTime  *prometheus.Desc
	emptyHits *prometheus.Desc
}

func newPoolStatsCollector(pool *pgxpool.Pool, service string) *poolStatsCollector {
	labels := []string{"service"}
	return &poolStatsCollector{
		pool:      pool,
		service:   service,
		acquired:  prometheus.NewDesc("db_pool_acquired_connections", "Number of currently acquired connections", labels, nil),
		idle:      prometheus.NewDesc("db_pool_idle_connections", "Number of currently idle connections", labels, nil),
		total:     prometheus.NewDesc("db_pool_total_connections", "Total number of connections in the pool", labels, nil),
		max:       prometheus.NewDesc("db_pool_max_connections", "Maximum number of connections allowed", labels, nil),
		acquires:  prometheus.NewDesc("db_pool_acquire_count_total", "Total number of connection acquires", labels, nil),
		waitTime:  prometheus.NewDesc("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds", labels, nil),
		emptyHits: prometheus.NewDesc("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection", labels, nil),
	}
}

func (c *poolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
	ch <- c.waitTime
	ch <- c.emptyHits
}

func (c *poolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()

	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(stat.AcquiredConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stat.IdleConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(stat.TotalConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(stat.MaxConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(stat.AcquireCount()), c.service)
	ch <- prometheus.MustNewConstMetric(c.waitTime, prometheus.CounterValue, stat.AcquireDuration().Seconds(), c.service)
	ch <- prometheus.MustNewConstMetric(c.emptyHits, prometheus.CounterValue, float64(stat.EmptyAcquireCount()), c.service)
}

// RegisterPoolMetrics registers a pgxpool metrics collector with the default
// Prometheus registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(newPoolStatsCollector(pool, service))
}
