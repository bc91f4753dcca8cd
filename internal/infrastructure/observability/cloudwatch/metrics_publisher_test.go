package cloudwatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

type fakeMetricDataClient struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeMetricDataClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func (f *fakeMetricDataClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func testSnapshot() entity.StreamingMetrics {
	return entity.StreamingMetrics{
		KafkaPartitions:   48,
		MessagesPerSecond: 2_400_000,
		AvgLatencyMs:      12,
		Throughput:        "2.4M/sec",
		ActiveConnections: 1247,
		ErrorRate:         0.02,
	}
}

func TestConvertToData(t *testing.T) {
	p := newMetricsPublisher(&fakeMetricDataClient{}, MetricsPublisherConfig{
		Namespace:         "Test/Namespace",
		DefaultDimensions: map[string]string{"Environment": "test"},
		BufferSize:        10,
		StorageResolution: 60,
	}, logger.New("error"))

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	data := p.convertToData(sample{snapshot: testSnapshot(), at: at})

	if len(data) != len(streamingSeries) {
		t.Fatalf("expected %d datums, got %d", len(streamingSeries), len(data))
	}

	values := make(map[string]float64, len(data))
	for _, d := range data {
		values[*d.MetricName] = *d.Value

		if d.Timestamp == nil || !d.Timestamp.Equal(at) {
			t.Errorf("%s: unexpected timestamp %v", *d.MetricName, d.Timestamp)
		}
		if d.StorageResolution == nil || *d.StorageResolution != 60 {
			t.Errorf("%s: expected StorageResolution=60", *d.MetricName)
		}
		if len(d.Dimensions) != 1 || *d.Dimensions[0].Name != "Environment" || *d.Dimensions[0].Value != "test" {
			t.Errorf("%s: unexpected dimensions %v", *d.MetricName, d.Dimensions)
		}
	}

	if values["MessagesPerSecond"] != 2_400_000 {
		t.Errorf("MessagesPerSecond = %v", values["MessagesPerSecond"])
	}
	if values["AvgLatency"] != 12 {
		t.Errorf("AvgLatency = %v", values["AvgLatency"])
	}
	if values["ActiveConnections"] != 1247 {
		t.Errorf("ActiveConnections = %v", values["ActiveConnections"])
	}
}

func TestMetricsPublisher_RecordDoesNotSend(t *testing.T) {
	client := &fakeMetricDataClient{}
	p := newMetricsPublisher(client, MetricsPublisherConfig{Namespace: "Test", BufferSize: 100}, logger.New("error"))

	p.Record(testSnapshot(), time.Now())
	p.Record(testSnapshot(), time.Now())

	if client.calls() != 0 {
		t.Fatalf("Record must only buffer, got %d calls", client.calls())
	}

	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if client.calls() != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", client.calls())
	}
	if got := len(client.inputs[0].MetricData); got != 2*len(streamingSeries) {
		t.Errorf("expected %d datums, got %d", 2*len(streamingSeries), got)
	}

	// Повторный Flush с пустым буфером ничего не отправляет
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if client.calls() != 1 {
		t.Errorf("empty flush must not call CloudWatch")
	}
}

func TestMetricsPublisher_FullBufferTriggersFlush(t *testing.T) {
	client := &fakeMetricDataClient{}
	p := newMetricsPublisher(client, MetricsPublisherConfig{
		Namespace:     "Test",
		BufferSize:    2,
		FlushInterval: time.Hour,
	}, logger.New("error"))
	p.start()
	defer p.Close(context.Background())

	p.Record(testSnapshot(), time.Now())
	p.Record(testSnapshot(), time.Now())

	deadline := time.Now().Add(2 * time.Second)
	for client.calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("full buffer did not trigger a flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMetricsPublisher_FlushError(t *testing.T) {
	client := &fakeMetricDataClient{err: errors.New("throttled")}
	p := newMetricsPublisher(client, MetricsPublisherConfig{Namespace: "Test", BufferSize: 10}, logger.New("error"))

	p.Record(testSnapshot(), time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.Flush(ctx); err == nil {
		t.Fatal("expected error")
	}
	if client.calls() != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, client.calls())
	}
}

func TestNormalizeMetricsConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    MetricsPublisherConfig
		expectErr bool
	}{
		{"valid config", MetricsPublisherConfig{Namespace: "Test", Region: "us-east-1"}, false},
		{"missing namespace", MetricsPublisherConfig{Region: "us-east-1"}, true},
		{"missing region", MetricsPublisherConfig{Namespace: "Test"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeMetricsConfig(tt.config)
			if (err != nil) != tt.expectErr {
				t.Errorf("normalizeMetricsConfig() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}

	cfg, _ := normalizeMetricsConfig(MetricsPublisherConfig{Namespace: "Test", Region: "us-east-1", StorageResolution: 30})
	if cfg.StorageResolution != 60 || cfg.BufferSize != 100 || cfg.FlushInterval != 60*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
