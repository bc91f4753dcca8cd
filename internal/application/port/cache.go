package port

import (
	"context"
	"errors"
)

// ErrCacheMiss ключ отсутствует в кеше
var ErrCacheMiss = errors.New("cache miss")

// Cache определяет интерфейс кеширования (Port)
type Cache interface {
	// Get читает значение в dest, при отсутствии ключа возвращает ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	// Set сохраняет значение с TTL по умолчанию
	Set(ctx context.Context, key string, value interface{}) error

	// Delete удаляет значение
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение
	Close() error
}
