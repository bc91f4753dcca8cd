package postgres

import (
	"testing"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

func TestIntentMapping(t *testing.T) {
	recordedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	intent := entity.Intent{
		ID:          "5f0c6a8e-3d55-4c52-8b0e-2d1d3a4b5c6d",
		Action:      valueobject.ActionScaleUp,
		Anomaly:     valueobject.AnomalyTrafficSpike,
		Description: "spike",
		RecordedAt:  recordedAt,
	}

	model := toDBModel(intent)
	if model.Action != "scale_up" || model.Anomaly != "traffic_spike" {
		t.Fatalf("unexpected model: %+v", model)
	}
	if model.RecordedAt.Location() != time.UTC {
		t.Errorf("recorded_at must be stored in UTC")
	}

	back := model.toEntity()
	if back.ID != intent.ID || back.Action != intent.Action || back.Anomaly != intent.Anomaly {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if !back.RecordedAt.Equal(recordedAt) {
		t.Errorf("recorded_at = %v, want %v", back.RecordedAt, recordedAt)
	}
}

func TestOldestFirst(t *testing.T) {
	intents := []entity.Intent{{ID: "3"}, {ID: "2"}, {ID: "1"}}

	got := oldestFirst(intents)

	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Fatalf("oldestFirst()[%d] = %s, want %s", i, got[i].ID, want)
		}
	}

	if len(oldestFirst(nil)) != 0 {
		t.Error("expected empty result for nil input")
	}
}
