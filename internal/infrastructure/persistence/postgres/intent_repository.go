package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

const schema = `
CREATE TABLE IF NOT EXISTS response_intents (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	anomaly     TEXT NOT NULL,
	description TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_response_intents_recorded_at ON response_intents (recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_response_intents_action ON response_intents (action);
`

// IntentRepository реализует repository.IntentRepository для PostgreSQL
type IntentRepository struct {
	db *sql.DB
}

// NewIntentRepository создает новый PostgreSQL repository
func NewIntentRepository(db *sql.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

// EnsureSchema создает таблицу журнала намерений, если ее нет
func (r *IntentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create intents schema: %w", err)
	}
	return nil
}

// Save сохраняет намерение
func (r *IntentRepository) Save(ctx context.Context, intent entity.Intent) error {
	model := toDBModel(intent)

	query := `
		INSERT INTO response_intents (id, action, anomaly, description, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.Action,
		model.Anomaly,
		model.Description,
		model.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert intent: %w", err)
	}

	return nil
}

// FindRecent возвращает последние limit намерений, новые в конце
func (r *IntentRepository) FindRecent(ctx context.Context, limit int) ([]entity.Intent, error) {
	query := `
		SELECT id, action, anomaly, description, recorded_at
		FROM response_intents
		ORDER BY recorded_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intents: %w", err)
	}
	defer rows.Close()

	intents := make([]entity.Intent, 0)
	for rows.Next() {
		var model intentDBModel
		if err := rows.Scan(&model.ID, &model.Action, &model.Anomaly, &model.Description, &model.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		intents = append(intents, model.toEntity())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intents: %w", err)
	}

	return oldestFirst(intents), nil
}

// CountByAction возвращает количество намерений указанного типа
func (r *IntentRepository) CountByAction(ctx context.Context, action valueobject.ResponseAction) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM response_intents WHERE action = $1`,
		action.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count intents: %w", err)
	}

	return count, nil
}
