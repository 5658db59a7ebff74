package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/position"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCollectionRepository implements the CollectionRepository interface
type PostgresCollectionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(config *RepositoryConfig) repositories.CollectionRepository {
	return &PostgresCollectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a collection at the end of the owner's list (append
// position from max, not count)
func (r *PostgresCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, position, created_at, updated_at)
		SELECT $1, $2, $3, COALESCE(MAX(position) + 1, 0), $4, $5
		FROM %s WHERE owner_id = $2
		RETURNING position
	`, r.tables.Collections, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		collection.ID,
		collection.OwnerID,
		collection.Name,
		collection.CreatedAt,
		collection.UpdatedAt,
	).Scan(&collection.Position)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("collection %q already exists", collection.Name),
				ResourceType: "collection",
				ResourceID:   collection.ID,
			}
		}
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

// GetByID retrieves an owned collection
func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, position, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Collections)

	var c models.Collection
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Position,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}

	return &c, nil
}

// Update renames an owned collection
func (r *PostgresCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, collection.Name, collection.UpdatedAt, collection.ID, collection.OwnerID)
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", collection.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an owned collection and its membership rows
func (r *PostgresCollectionRepository) Delete(ctx context.Context, id, ownerID string) error {
	memberQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE collection_id IN (SELECT id FROM %s WHERE id = $1 AND owner_id = $2)
	`, r.tables.CollectionDocuments, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, memberQuery, id, ownerID); err != nil {
		return fmt.Errorf("delete collection memberships: %w", err)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Collections)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner lists an owner's collections ordered by position
func (r *PostgresCollectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, position, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY position ASC
	`, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	// Return empty slice instead of nil
	if collections == nil {
		collections = []models.Collection{}
	}
	return collections, nil
}

// Reorder bulk-rewrites collection positions. Last write wins.
func (r *PostgresCollectionRepository) Reorder(ctx context.Context, ownerID string, moves []position.Move) error {
	if len(moves) == 0 {
		return nil
	}

	ids := make([]string, len(moves))
	positions := make([]int, len(moves))
	for i, m := range moves {
		ids[i] = m.ID
		positions[i] = m.Position
	}

	query := fmt.Sprintf(`
		UPDATE %s AS c
		SET position = u.position, updated_at = NOW()
		FROM unnest($2::text[], $3::int[]) AS u(id, position)
		WHERE c.id = u.id::uuid AND c.owner_id = $1
	`, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ownerID, ids, positions); err != nil {
		return fmt.Errorf("reorder collections: %w", err)
	}

	return nil
}

// AddDocument appends a document to a collection. The membership position is
// computed within the target collection, so each addition is independent.
func (r *PostgresCollectionRepository) AddDocument(ctx context.Context, collectionID, documentID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (collection_id, document_id, position, created_at)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0), NOW()
		FROM %s WHERE collection_id = $1
	`, r.tables.CollectionDocuments, r.tables.CollectionDocuments)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, collectionID, documentID); err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "document is already in this collection",
				ResourceType: "membership",
				ResourceID:   documentID,
			}
		}
		return fmt.Errorf("add document to collection: %w", err)
	}

	return nil
}

// RemoveDocument deletes one membership row. Removing an absent membership
// is a no-op, matching set-difference semantics.
func (r *PostgresCollectionRepository) RemoveDocument(ctx context.Context, collectionID, documentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE collection_id = $1 AND document_id = $2
	`, r.tables.CollectionDocuments)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, collectionID, documentID); err != nil {
		return fmt.Errorf("remove document from collection: %w", err)
	}

	return nil
}

// ListDocumentIDs returns the member document ids ordered by membership position
func (r *PostgresCollectionRepository) ListDocumentIDs(ctx context.Context, collectionID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT document_id
		FROM %s
		WHERE collection_id = $1
		ORDER BY position ASC
	`, r.tables.CollectionDocuments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list collection documents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return ids, nil
}

// ListCollectionIDsForDocument returns the acting owner's collections that
// contain the document. Collections owned by other users are invisible here,
// so membership reconciliation never touches them.
func (r *PostgresCollectionRepository) ListCollectionIDsForDocument(ctx context.Context, ownerID, documentID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT cd.collection_id
		FROM %s cd
		JOIN %s c ON c.id = cd.collection_id
		WHERE cd.document_id = $1 AND c.owner_id = $2
		ORDER BY c.position ASC
	`, r.tables.CollectionDocuments, r.tables.Collections)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list memberships for document: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return ids, nil
}
