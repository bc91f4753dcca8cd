package cloudwatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	// CloudWatch limits
	maxMetricsPerRequest = 1000
	maxRetries           = 3
	initialBackoff       = 100 * time.Millisecond

	flushTimeout = 30 * time.Second
)

// metricDataAPI подмножество cloudwatch.Client, нужное издателю
type metricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsPublisherConfig holds configuration for CloudWatch metrics publishing.
type MetricsPublisherConfig struct {
	Namespace         string            // CloudWatch namespace (e.g., "MegalithDashboard/Streaming")
	Region            string            // AWS region (e.g., "us-east-1")
	Endpoint          string            // Optional endpoint override (for LocalStack)
	AccessKeyID       string            // AWS access key
	SecretAccessKey   string            // AWS secret key
	DefaultDimensions map[string]string // Default dimensions added to all metrics
	BufferSize        int               // Snapshots buffered before auto-flush
	FlushInterval     time.Duration     // Automatic flush interval
	StorageResolution int32             // Storage resolution in seconds (1 or 60)
}

type sample struct {
	snapshot entity.StreamingMetrics
	at       time.Time
}

// MetricsPublisher буферизует snapshot потоковых метрик и отправляет их в CloudWatch.
// Реализует port.SnapshotPublisher: Record никогда не ждет сети.
type MetricsPublisher struct {
	client            metricDataAPI
	namespace         string
	defaultDimensions map[string]string
	storageResolution int32

	buffer     []sample
	bufferSize int
	mu         sync.Mutex

	// flushMu сериализует отправку, чтобы не держать mu во время сетевых вызовов
	flushMu sync.Mutex

	flushInterval time.Duration
	flushNow      chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup

	logger *logger.Logger
}

// NewMetricsPublisher creates a new CloudWatch metrics publisher.
func NewMetricsPublisher(ctx context.Context, cfg MetricsPublisherConfig, log *logger.Logger) (*MetricsPublisher, error) {
	cfg, err := normalizeMetricsConfig(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	p := newMetricsPublisher(cloudwatch.NewFromConfig(awsCfg), cfg, log)
	p.start()

	return p, nil
}

func normalizeMetricsConfig(cfg MetricsPublisherConfig) (MetricsPublisherConfig, error) {
	if cfg.Namespace == "" {
		return cfg, fmt.Errorf("namespace is required")
	}
	if cfg.Region == "" {
		return cfg, fmt.Errorf("region is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 60 * time.Second
	}
	if cfg.StorageResolution != 1 && cfg.StorageResolution != 60 {
		cfg.StorageResolution = 60
	}
	return cfg, nil
}

func newMetricsPublisher(client metricDataAPI, cfg MetricsPublisherConfig, log *logger.Logger) *MetricsPublisher {
	return &MetricsPublisher{
		client:            client,
		namespace:         cfg.Namespace,
		defaultDimensions: cfg.DefaultDimensions,
		storageResolution: cfg.StorageResolution,
		buffer:            make([]sample, 0, cfg.BufferSize),
		bufferSize:        cfg.BufferSize,
		flushInterval:     cfg.FlushInterval,
		flushNow:          make(chan struct{}, 1),
		stopCh:            make(chan struct{}),
		logger:            log.With("component", "cloudwatch_metrics"),
	}
}

func (p *MetricsPublisher) start() {
	p.wg.Add(1)
	go p.flushLoop()
}

// Record добавляет snapshot в буфер. При заполнении буфера будит фоновую отправку.
func (p *MetricsPublisher) Record(snapshot entity.StreamingMetrics, at time.Time) {
	p.mu.Lock()
	p.buffer = append(p.buffer, sample{snapshot: snapshot, at: at})
	full := len(p.buffer) >= p.bufferSize
	p.mu.Unlock()

	if full {
		select {
		case p.flushNow <- struct{}{}:
		default:
		}
	}
}

// Flush forces immediate publication of all buffered snapshots.
func (p *MetricsPublisher) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	pending := p.buffer
	p.buffer = make([]sample, 0, p.bufferSize)
	p.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	data := make([]types.MetricDatum, 0, len(pending)*len(streamingSeries))
	for _, s := range pending {
		data = append(data, p.convertToData(s)...)
	}

	// Publish in chunks (CloudWatch limit: 1000 metrics/request)
	for i := 0; i < len(data); i += maxMetricsPerRequest {
		end := i + maxMetricsPerRequest
		if end > len(data) {
			end = len(data)
		}

		if err := p.publishBatchWithRetry(ctx, data[i:end]); err != nil {
			return fmt.Errorf("failed to publish chunk: %w", err)
		}
	}

	p.logger.Debug("Streaming snapshots published", "snapshots", len(pending), "datums", len(data))
	return nil
}

// Close stops the background flush goroutine and flushes remaining snapshots.
func (p *MetricsPublisher) Close(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	return p.Flush(ctx)
}

// flushLoop runs in a background goroutine and flushes the buffer periodically.
func (p *MetricsPublisher) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-p.flushNow:
		case <-p.stopCh:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := p.Flush(ctx); err != nil {
			// Снимки этой пачки теряются, следующая отправка пойдет по расписанию
			p.logger.Error("Failed to publish streaming metrics", err)
		}
		cancel()
	}
}

// publishBatchWithRetry publishes a batch of metrics with exponential backoff retry.
func (p *MetricsPublisher) publishBatchWithRetry(ctx context.Context, data []types.MetricDatum) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: data,
		})
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt < maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// series одна метрика из snapshot
type series struct {
	name  string
	unit  types.StandardUnit
	value func(entity.StreamingMetrics) float64
}

var streamingSeries = []series{
	{"MessagesPerSecond", types.StandardUnitCountSecond, func(s entity.StreamingMetrics) float64 { return float64(s.MessagesPerSecond) }},
	{"AvgLatency", types.StandardUnitMilliseconds, func(s entity.StreamingMetrics) float64 { return s.AvgLatencyMs }},
	{"ActiveConnections", types.StandardUnitCount, func(s entity.StreamingMetrics) float64 { return float64(s.ActiveConnections) }},
	{"KafkaPartitions", types.StandardUnitCount, func(s entity.StreamingMetrics) float64 { return float64(s.KafkaPartitions) }},
	{"ErrorRate", types.StandardUnitPercent, func(s entity.StreamingMetrics) float64 { return s.ErrorRate }},
}

// convertToData раскладывает snapshot на MetricDatum по одному на серию
func (p *MetricsPublisher) convertToData(s sample) []types.MetricDatum {
	dimensions := make([]types.Dimension, 0, len(p.defaultDimensions))
	for key, value := range p.defaultDimensions {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(key),
			Value: aws.String(value),
		})
	}

	data := make([]types.MetricDatum, 0, len(streamingSeries))
	for _, sr := range streamingSeries {
		datum := types.MetricDatum{
			MetricName: aws.String(sr.name),
			Value:      aws.Float64(sr.value(s.snapshot)),
			Unit:       sr.unit,
			Timestamp:  aws.Time(s.at),
			Dimensions: dimensions,
		}
		if p.storageResolution > 0 {
			datum.StorageResolution = aws.Int32(p.storageResolution)
		}
		data = append(data, datum)
	}

	return data
}

// buildAWSConfig creates an AWS config with credentials.
func buildAWSConfig(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if accessKeyID != "" && secretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override endpoint if specified (for LocalStack testing)
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return cfg, nil
}
