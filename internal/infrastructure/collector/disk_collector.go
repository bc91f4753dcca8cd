package collector

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/disk"
)

// DiskCollector собирает заполненность одной точки монтирования
type DiskCollector struct {
	path        string
	usedPercent *prometheus.Desc
	freeBytes   *prometheus.Desc

	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDiskCollector создает новый Disk collector. Пустой path означает "/".
func NewDiskCollector(path string) *DiskCollector {
	if path == "" {
		path = "/"
	}

	return &DiskCollector{
		path: path,
		usedPercent: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "disk_used_percent"),
			"Disk space in use.", []string{"path"}, nil),
		freeBytes: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "disk_free_bytes"),
			"Disk space available.", []string{"path"}, nil),
		usage: disk.UsageWithContext,
	}
}

func (c *DiskCollector) name() string { return "disk" }

func (c *DiskCollector) describe(ch chan<- *prometheus.Desc) {
	ch <- c.usedPercent
	ch <- c.freeBytes
}

func (c *DiskCollector) collect(ctx context.Context, ch chan<- prometheus.Metric) error {
	usage, err := c.usage(ctx, c.path)
	if err != nil {
		return err
	}

	ch <- prometheus.MustNewConstMetric(c.usedPercent, prometheus.GaugeValue, usage.UsedPercent, c.path)
	ch <- prometheus.MustNewConstMetric(c.freeBytes, prometheus.GaugeValue, float64(usage.Free), c.path)

	return nil
}
