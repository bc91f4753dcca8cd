package writebehind_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/memory"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/writebehind"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// laggingRepository имитирует удаленное хранилище с большой задержкой
type laggingRepository struct {
	*memory.IntentRepository
	delay time.Duration
}

func (r *laggingRepository) Save(ctx context.Context, intent entity.Intent) error {
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.IntentRepository.Save(ctx, intent)
}

type nopRenderer struct{}

func (nopRenderer) Render(valueobject.SectionID, interface{})             {}
func (nopRenderer) Notify(string, valueobject.NotifyLevel, time.Duration) {}

func TestAnomalyDispatchDoesNotWaitForSlowIntentStore(t *testing.T) {
	log := logger.New("error")
	store := &laggingRepository{IntentRepository: memory.NewIntentRepository(10), delay: 2 * time.Second}
	writer := writebehind.NewIntentWriter(store, writebehind.Config{}, log)
	defer func() { _ = writer.Close(context.Background()) }()

	responder := usecase.NewRespondToAnomalyUseCase(service.NewResponsePolicy(), writer, nil, nil, log)
	dispatcher := usecase.NewDispatchEventUseCase(entity.NewSampleDashboardState(), nopRenderer{}, nil, responder, nil, log)

	raw := []byte(`{"type":"anomaly_detected","payload":{"type":"traffic_spike","description":"spike","autoResponse":true}}`)

	start := time.Now()
	require.True(t, dispatcher.DispatchMessage(raw))
	require.True(t, dispatcher.DispatchMessage([]byte(`{"type":"metrics_update","payload":{"leads":1300,"conversionRate":13,"streamingThroughput":2100000}}`)))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	assert.Eventually(t, func() bool {
		count, err := writer.CountByAction(context.Background(), valueobject.ActionScaleUp)
		return err == nil && count == 1
	}, 5*time.Second, 20*time.Millisecond)
}
