// Package collector отдает метрики узла, на котором работает дашборд, в Prometheus.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	namespace      = "megalith_dashboard"
	subsystem      = "host"
	collectTimeout = 3 * time.Second
)

// hostCollector один источник метрик узла
type hostCollector interface {
	name() string
	describe(ch chan<- *prometheus.Desc)
	collect(ctx context.Context, ch chan<- prometheus.Metric) error
}

// SystemMetricsCollector собирает CPU, память, диск и сеть на каждый scrape.
// Реализует prometheus.Collector.
type SystemMetricsCollector struct {
	collectors []hostCollector
	timeout    time.Duration
	errorsDesc *prometheus.Desc
	logger     *logger.Logger
}

// NewSystemMetricsCollector создает collector. diskPath точка монтирования для метрик диска.
func NewSystemMetricsCollector(diskPath string, log *logger.Logger) *SystemMetricsCollector {
	return newSystemMetricsCollector(log,
		NewCPUCollector(),
		NewMemoryCollector(),
		NewDiskCollector(diskPath),
		NewNetworkCollector(),
	)
}

func newSystemMetricsCollector(log *logger.Logger, collectors ...hostCollector) *SystemMetricsCollector {
	return &SystemMetricsCollector{
		collectors: collectors,
		timeout:    collectTimeout,
		errorsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "scrape_error"),
			"1 if the last scrape of the host source failed.",
			[]string{"source"}, nil,
		),
		logger: log.With("component", "host_collector"),
	}
}

// Describe реализует prometheus.Collector
func (c *SystemMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.errorsDesc
	for _, hc := range c.collectors {
		hc.describe(ch)
	}
}

// Collect опрашивает все источники параллельно. Ошибка одного источника не мешает остальным.
func (c *SystemMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(c.collectors))

	for _, hc := range c.collectors {
		go func(hc hostCollector) {
			defer wg.Done()

			failed := 0.0
			if err := hc.collect(ctx, ch); err != nil {
				failed = 1
				c.logger.Debug("Host metrics source failed", "source", hc.name(), "error", err.Error())
			}
			ch <- prometheus.MustNewConstMetric(c.errorsDesc, prometheus.GaugeValue, failed, hc.name())
		}(hc)
	}

	wg.Wait()
}
