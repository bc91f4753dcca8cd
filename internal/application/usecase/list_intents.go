package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/megalith-dashboard/internal/application/dto"
	"github.com/dreschagin/megalith-dashboard/internal/domain/repository"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	defaultIntentsLimit = 50
	maxIntentsLimit     = 500
)

// ListIntentsUseCase возвращает последние намерения автоматической реакции
type ListIntentsUseCase struct {
	repository repository.IntentRepository
	logger     *logger.Logger
}

// NewListIntentsUseCase создает новый use case
func NewListIntentsUseCase(repository repository.IntentRepository, logger *logger.Logger) *ListIntentsUseCase {
	return &ListIntentsUseCase{
		repository: repository,
		logger:     logger,
	}
}

// Execute возвращает не больше limit намерений, новые в конце
func (uc *ListIntentsUseCase) Execute(ctx context.Context, limit int) ([]dto.IntentDTO, error) {
	if limit <= 0 {
		limit = defaultIntentsLimit
	}
	if limit > maxIntentsLimit {
		limit = maxIntentsLimit
	}

	intents, err := uc.repository.FindRecent(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to list intents", err)
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}

	return dto.ToIntentDTOs(intents), nil
}
