package collector

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryCollector собирает метрики памяти
type MemoryCollector struct {
	usedPercent *prometheus.Desc
	totalBytes  *prometheus.Desc
	usedBytes   *prometheus.Desc

	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemoryCollector создает новый Memory collector
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		usedPercent: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "memory_used_percent"),
			"Host memory in use.", nil, nil),
		totalBytes: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "memory_total_bytes"),
			"Host memory total.", nil, nil),
		usedBytes: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "memory_used_bytes"),
			"Host memory used.", nil, nil),
		virtualMemory: mem.VirtualMemoryWithContext,
	}
}

func (c *MemoryCollector) name() string { return "memory" }

func (c *MemoryCollector) describe(ch chan<- *prometheus.Desc) {
	ch <- c.usedPercent
	ch <- c.totalBytes
	ch <- c.usedBytes
}

func (c *MemoryCollector) collect(ctx context.Context, ch chan<- prometheus.Metric) error {
	vmStat, err := c.virtualMemory(ctx)
	if err != nil {
		return err
	}

	ch <- prometheus.MustNewConstMetric(c.usedPercent, prometheus.GaugeValue, vmStat.UsedPercent)
	ch <- prometheus.MustNewConstMetric(c.totalBytes, prometheus.GaugeValue, float64(vmStat.Total))
	ch <- prometheus.MustNewConstMetric(c.usedBytes, prometheus.GaugeValue, float64(vmStat.Used))

	return nil
}
