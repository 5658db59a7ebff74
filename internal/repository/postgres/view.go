package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain/models"
	"quill/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresViewRepository implements the ViewRepository interface
type PostgresViewRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewViewRepository creates a new view event repository
func NewViewRepository(config *RepositoryConfig) repositories.ViewRepository {
	return &PostgresViewRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// InsertEvent appends one immutable view event row
func (r *PostgresViewRepository) InsertEvent(ctx context.Context, event *models.ViewEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, viewer_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.ViewEvents)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, event.ID, event.DocumentID, event.ViewerID, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert view event: %w", err)
	}

	return nil
}
