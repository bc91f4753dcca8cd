package cloudwatch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakeLogsClient struct {
	mu       sync.Mutex
	batches  [][]types.InputLogEvent
	tokens   []*string
	seqFails int
	created  []string
}

func (f *fakeLogsClient) PutLogEvents(_ context.Context, params *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, params.SequenceToken)
	if f.seqFails > 0 {
		f.seqFails--
		return nil, &types.InvalidSequenceTokenException{ExpectedSequenceToken: aws.String("expected")}
	}

	f.batches = append(f.batches, params.LogEvents)
	return &cloudwatchlogs.PutLogEventsOutput{NextSequenceToken: aws.String("next")}, nil
}

func (f *fakeLogsClient) CreateLogGroup(_ context.Context, params *cloudwatchlogs.CreateLogGroupInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, "group:"+*params.LogGroupName)
	return nil, &types.ResourceAlreadyExistsException{}
}

func (f *fakeLogsClient) CreateLogStream(_ context.Context, params *cloudwatchlogs.CreateLogStreamInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, "stream:"+*params.LogStreamName)
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func testLogsConfig() LogsPublisherConfig {
	return LogsPublisherConfig{
		LogGroupName:  "/megalith/dashboard",
		LogStreamName: "test",
		Region:        "us-east-1",
		BufferSize:    100,
		FlushInterval: time.Hour,
	}
}

func TestConvertToLogEvent(t *testing.T) {
	p := newLogsPublisher(&fakeLogsClient{}, testLogsConfig())

	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	event := p.convertToLogEvent([]byte(`{"level":"INFO","msg":"Transport state changed"}`+"\n"), at)

	if *event.Timestamp != at.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", *event.Timestamp, at.UnixMilli())
	}
	if *event.Message != `{"level":"INFO","msg":"Transport state changed"}` {
		t.Errorf("unexpected message %q", *event.Message)
	}
}

func TestConvertToLogEvent_Truncation(t *testing.T) {
	p := newLogsPublisher(&fakeLogsClient{}, testLogsConfig())

	event := p.convertToLogEvent([]byte(strings.Repeat("x", maxLogEventSize+1000)), time.Now())

	if len(*event.Message) != maxLogEventSize {
		t.Errorf("expected message truncated to %d bytes, got %d", maxLogEventSize, len(*event.Message))
	}
	if !strings.HasSuffix(*event.Message, "...") {
		t.Error("expected truncation marker '...' at end of message")
	}
}

func TestLogsPublisher_WriteCopiesAndFlushSorts(t *testing.T) {
	client := &fakeLogsClient{}
	p := newLogsPublisher(client, testLogsConfig())

	base := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(5 * time.Second), base, base.Add(2 * time.Second)}
	messages := []string{"third", "first", "second"}

	buf := make([]byte, 0, 16)
	for i := range messages {
		at := times[i]
		p.clock = func() time.Time { return at }

		buf = append(buf[:0], messages[i]...)
		if _, err := p.Write(buf); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if len(client.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(client.batches))
	}

	got := make([]string, 0, 3)
	for _, e := range client.batches[0] {
		got = append(got, *e.Message)
	}
	if strings.Join(got, ",") != "first,second,third" {
		t.Errorf("events not in chronological order: %v", got)
	}
}

func TestLogsPublisher_InvalidSequenceTokenRetry(t *testing.T) {
	client := &fakeLogsClient{seqFails: 1}
	p := newLogsPublisher(client, testLogsConfig())

	_, _ = p.Write([]byte("line"))
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if len(client.tokens) != 2 || client.tokens[1] == nil || *client.tokens[1] != "expected" {
		t.Errorf("expected retry with expected sequence token, got %v", client.tokens)
	}
}

func TestLogsPublisher_AsZapSink(t *testing.T) {
	client := &fakeLogsClient{}
	p := newLogsPublisher(client, testLogsConfig())

	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), p, zapcore.InfoLevel)
	log := zap.New(core)

	log.Info("Intent recorded", zap.String("action", "scale_up"))
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(client.batches) != 1 || len(client.batches[0]) != 1 {
		t.Fatalf("expected one shipped event, got %v", client.batches)
	}
	if msg := *client.batches[0][0].Message; !strings.Contains(msg, `"action":"scale_up"`) {
		t.Errorf("unexpected shipped message %q", msg)
	}
}

func TestEnsureLogGroupAndStream_IgnoresAlreadyExists(t *testing.T) {
	client := &fakeLogsClient{}
	p := newLogsPublisher(client, testLogsConfig())

	if err := p.ensureLogGroupAndStream(context.Background()); err != nil {
		t.Fatalf("ensureLogGroupAndStream() error = %v", err)
	}
	if len(client.created) != 2 {
		t.Errorf("expected group and stream creation, got %v", client.created)
	}
}

func TestNormalizeLogsConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    LogsPublisherConfig
		expectErr bool
	}{
		{"valid config", LogsPublisherConfig{LogGroupName: "/g", LogStreamName: "s", Region: "us-east-1"}, false},
		{"missing log group", LogsPublisherConfig{LogStreamName: "s", Region: "us-east-1"}, true},
		{"missing log stream", LogsPublisherConfig{LogGroupName: "/g", Region: "us-east-1"}, true},
		{"missing region", LogsPublisherConfig{LogGroupName: "/g", LogStreamName: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := normalizeLogsConfig(tt.config)
			if (err != nil) != tt.expectErr {
				t.Fatalf("normalizeLogsConfig() error = %v, expectErr %v", err, tt.expectErr)
			}
			if err == nil && (cfg.BufferSize != 50 || cfg.FlushInterval != 5*time.Second) {
				t.Errorf("unexpected defaults: %+v", cfg)
			}
		})
	}
}
