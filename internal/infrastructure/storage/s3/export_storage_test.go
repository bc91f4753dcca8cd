package s3

import (
	"context"
	"strings"
	"testing"
)

func TestNormalizeConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing bucket", cfg: Config{}, wantErr: "bucket is required"},
		{name: "bad url mode", cfg: Config{Bucket: "b", URLMode: "signed"}, wantErr: "unsupported s3 url mode"},
		{name: "defaults", cfg: Config{Bucket: " exports "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeConfig(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("normalizeConfig() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Bucket != "exports" || got.Region != "ru-central1" || got.URLMode != URLModePresigned {
				t.Errorf("unexpected defaults: %+v", got)
			}
		})
	}
}

func TestExportStorage_PublicURL(t *testing.T) {
	key := "exports/2026/03/14/20260314T092653Z_snapshot.json"

	pathStyle := &ExportStorage{bucket: "dash", endpoint: "https://storage.yandexcloud.net", usePathStyle: true, urlMode: URLModePublic}
	got, err := pathStyle.ObjectURL(context.Background(), key)
	if err != nil {
		t.Fatalf("ObjectURL() error = %v", err)
	}
	if want := "https://storage.yandexcloud.net/dash/" + key; got != want {
		t.Errorf("path style url = %q, want %q", got, want)
	}

	virtualHost := &ExportStorage{bucket: "dash", endpoint: "https://storage.yandexcloud.net", urlMode: URLModePublic}
	got, _ = virtualHost.ObjectURL(context.Background(), key)
	if want := "https://dash.storage.yandexcloud.net/" + key; got != want {
		t.Errorf("virtual host url = %q, want %q", got, want)
	}
}
