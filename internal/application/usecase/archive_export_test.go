package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

type putCall struct {
	key         string
	contentType string
	body        []byte
}

type mockExportStorage struct {
	calls []putCall
	err   error
}

func (m *mockExportStorage) PutObject(_ context.Context, key, contentType string, body []byte) (string, error) {
	m.calls = append(m.calls, putCall{key: key, contentType: contentType, body: body})
	if m.err != nil {
		return "", m.err
	}
	return "https://example.com/" + key, nil
}

func TestArchiveExportUseCase_Success(t *testing.T) {
	storage := &mockExportStorage{}
	uc := NewArchiveExportUseCase(&fakeExporter{body: []byte("doc")}, storage, ArchiveExportConfig{KeyPrefix: "/exports/"}, logger.New("error"))
	uc.clock = func() time.Time { return time.Date(2026, 2, 7, 12, 34, 56, 0, time.UTC) }

	res, err := uc.Execute(context.Background(), "csv")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantKey := "exports/2026/02/07/20260207T123456Z_snapshot.csv"
	if res.Key != wantKey {
		t.Errorf("Key = %q, want %q", res.Key, wantKey)
	}
	if res.URL != "https://example.com/"+wantKey {
		t.Errorf("URL = %q", res.URL)
	}
	if len(storage.calls) != 1 || storage.calls[0].contentType != "text/csv" {
		t.Fatalf("unexpected uploads: %+v", storage.calls)
	}
	if res.SizeBytes != len("csv:doc") {
		t.Errorf("SizeBytes = %d", res.SizeBytes)
	}
}

func TestArchiveExportUseCase_StorageNotConfigured(t *testing.T) {
	uc := NewArchiveExportUseCase(&fakeExporter{}, nil, ArchiveExportConfig{}, logger.New("error"))

	if _, err := uc.Execute(context.Background(), "json"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestArchiveExportUseCase_UploadError(t *testing.T) {
	storage := &mockExportStorage{err: errors.New("access denied")}
	uc := NewArchiveExportUseCase(&fakeExporter{}, storage, ArchiveExportConfig{}, logger.New("error"))

	_, err := uc.Execute(context.Background(), "json")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(storage.calls) != 1 || storage.calls[0].key[:8] != "exports/" {
		t.Errorf("default prefix not applied: %+v", storage.calls)
	}
}
