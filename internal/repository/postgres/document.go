package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// documentColumns is the select list shared by every document query.
const documentColumns = `id, owner_id, folder_id, name, current_code, current_index,
		forked_from_id, fork_depth, visibility,
		like_count, fork_count, view_count, comment_count,
		created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document row
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, folder_id, name, current_code, current_index,
			forked_from_id, fork_depth, visibility,
			like_count, fork_count, view_count, comment_count,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.FolderID,
		doc.Name,
		doc.CurrentCode,
		doc.CurrentIndex,
		doc.ForkedFromID,
		doc.ForkDepth,
		doc.Visibility,
		doc.LikeCount,
		doc.ForkCount,
		doc.ViewCount,
		doc.CommentCount,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: folder does not exist", domain.ErrValidation)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by id alone; visibility is the caller's problem
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetOwned retrieves a document owned by ownerID
func (r *PostgresDocumentRepository) GetOwned(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND owner_id = $2`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update rewrites the mutable fields of an owned document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, current_code = $3, current_index = $4,
			visibility = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.FolderID,
		doc.Name,
		doc.CurrentCode,
		doc.CurrentIndex,
		doc.Visibility,
		doc.UpdatedAt,
		doc.ID,
		doc.OwnerID,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: folder does not exist", domain.ErrValidation)
		}
		return fmt.Errorf("update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an owned document row
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner lists an owner's documents, most recently updated first
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListPublic lists publicly visible documents, most recently updated first
func (r *PostgresDocumentRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE visibility = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, models.VisibilityPublic, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ClearFolder moves every document out of a folder. Runs inside the
// folder-delete cascade transaction via the context executor.
func (r *PostgresDocumentRepository) ClearFolder(ctx context.Context, folderID, ownerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, updated_at = NOW()
		WHERE folder_id = $1 AND owner_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID, ownerID); err != nil {
		return fmt.Errorf("clear folder: %w", err)
	}

	return nil
}

// IncrementCounter atomically bumps one denormalized counter. The column
// name is interpolated, so only whitelisted CounterField values are accepted.
func (r *PostgresDocumentRepository) IncrementCounter(ctx context.Context, id string, field models.CounterField) error {
	if !field.Valid() {
		return fmt.Errorf("unknown counter field %q: %w", field, domain.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE id = $1`, r.tables.Documents, field, field)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment %s: %w", field, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FolderID,
		&doc.Name,
		&doc.CurrentCode,
		&doc.CurrentIndex,
		&doc.ForkedFromID,
		&doc.ForkDepth,
		&doc.Visibility,
		&doc.LikeCount,
		&doc.ForkCount,
		&doc.ViewCount,
		&doc.CommentCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Return empty slice instead of nil
	if documents == nil {
		documents = []models.Document{}
	}
	return documents, nil
}
