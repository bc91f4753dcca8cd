package collector

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/net"
)

// NetworkCollector собирает суммарный трафик по всем интерфейсам.
// Счетчики монотонные, скорость считает Prometheus через rate().
type NetworkCollector struct {
	bytesSent *prometheus.Desc
	bytesRecv *prometheus.Desc

	ioCounters func(ctx context.Context) ([]net.IOCountersStat, error)
}

// NewNetworkCollector создает новый Network collector
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{
		bytesSent: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "network_sent_bytes_total"),
			"Bytes sent on all interfaces.", nil, nil),
		bytesRecv: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "network_received_bytes_total"),
			"Bytes received on all interfaces.", nil, nil),
		ioCounters: func(ctx context.Context) ([]net.IOCountersStat, error) {
			return net.IOCountersWithContext(ctx, false)
		},
	}
}

func (c *NetworkCollector) name() string { return "network" }

func (c *NetworkCollector) describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytesSent
	ch <- c.bytesRecv
}

func (c *NetworkCollector) collect(ctx context.Context, ch chan<- prometheus.Metric) error {
	stats, err := c.ioCounters(ctx)
	if err != nil {
		return err
	}

	var sent, recv uint64
	for _, s := range stats {
		sent += s.BytesSent
		recv += s.BytesRecv
	}

	ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue, float64(sent))
	ch <- prometheus.MustNewConstMetric(c.bytesRecv, prometheus.CounterValue, float64(recv))

	return nil
}
