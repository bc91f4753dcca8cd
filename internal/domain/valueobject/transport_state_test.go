package valueobject

import (
	"errors"
	"testing"
)

func TestTransportState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TransportState
		to   TransportState
		want bool
	}{
		{TransportUninitialized, TransportConnected, true},
		{TransportUninitialized, TransportPolling, true},
		{TransportUninitialized, TransportClosed, true},
		{TransportConnected, TransportPolling, true},
		{TransportConnected, TransportClosed, true},
		{TransportPolling, TransportClosed, true},
		{TransportPolling, TransportConnected, false},
		{TransportConnected, TransportUninitialized, false},
		{TransportClosed, TransportPolling, false},
		{TransportClosed, TransportClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransportState_TransitionTo(t *testing.T) {
	next, err := TransportPolling.TransitionTo(TransportConnected)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if next != TransportPolling {
		t.Errorf("state must not change on rejected transition, got %s", next)
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		kind   AnomalyKind
		action ResponseAction
		ok     bool
	}{
		{AnomalyTrafficSpike, ActionScaleUp, true},
		{AnomalyConversionDrop, ActionTeamAlert, true},
		{AnomalyDataQuality, ActionPipelinePause, true},
		{AnomalyKind("solar_flare"), "", false},
	}

	for _, tt := range tests {
		action, ok := ActionFor(tt.kind)
		if action != tt.action || ok != tt.ok {
			t.Errorf("ActionFor(%q) = (%q, %v), want (%q, %v)", tt.kind, action, ok, tt.action, tt.ok)
		}
	}
}

func TestParseExportFormat(t *testing.T) {
	if f, err := ParseExportFormat(" JSON "); err != nil || f != FormatJSON {
		t.Errorf("ParseExportFormat(JSON) = %q, %v", f, err)
	}
	if f, err := ParseExportFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("ParseExportFormat(csv) = %q, %v", f, err)
	}
	if _, err := ParseExportFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
