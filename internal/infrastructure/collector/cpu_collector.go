package collector

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUCollector собирает загрузку CPU
type CPUCollector struct {
	usage *prometheus.Desc
	cores *prometheus.Desc

	// percent возвращает загрузку с момента предыдущего вызова (interval 0 не блокирует scrape)
	percent func(ctx context.Context) ([]float64, error)
	counts  func() (int, error)
}

// NewCPUCollector создает новый CPU collector
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{
		usage: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "cpu_usage_percent"),
			"Host CPU utilisation since the previous scrape.", nil, nil),
		cores: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "cpu_cores"),
			"Logical CPU cores.", nil, nil),
		percent: func(ctx context.Context) ([]float64, error) {
			return cpu.PercentWithContext(ctx, 0, false)
		},
		counts: func() (int, error) { return cpu.Counts(true) },
	}
}

func (c *CPUCollector) name() string { return "cpu" }

func (c *CPUCollector) describe(ch chan<- *prometheus.Desc) {
	ch <- c.usage
	ch <- c.cores
}

func (c *CPUCollector) collect(ctx context.Context, ch chan<- prometheus.Metric) error {
	percentages, err := c.percent(ctx)
	if err != nil {
		return err
	}

	if len(percentages) > 0 {
		ch <- prometheus.MustNewConstMetric(c.usage, prometheus.GaugeValue, percentages[0])
	}

	if counts, err := c.counts(); err == nil {
		ch <- prometheus.MustNewConstMetric(c.cores, prometheus.GaugeValue, float64(counts))
	}

	return nil
}
