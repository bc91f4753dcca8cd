package port

import "context"

// ExportStorage хранилище архивов экспорта.
type ExportStorage interface {
	// PutObject загружает объект и возвращает URL для чтения.
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}
