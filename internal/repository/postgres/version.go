package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain/models"
	"quill/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version history repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListByDocument returns a document's version rows ordered by position
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.PersistedVersionEntry, error) {
	query := fmt.Sprintf(`
		SELECT document_id, entry_id, position, code, timestamp, label, kind, prompt
		FROM %s
		WHERE document_id = $1
		ORDER BY position ASC
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var entries []models.PersistedVersionEntry
	for rows.Next() {
		var e models.PersistedVersionEntry
		err := rows.Scan(
			&e.DocumentID,
			&e.EntryID,
			&e.Position,
			&e.Code,
			&e.Timestamp,
			&e.Label,
			&e.Kind,
			&e.Prompt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []models.PersistedVersionEntry{}
	}
	return entries, nil
}

// DeleteEntries removes the named entries from a document's history
func (r *PostgresVersionRepository) DeleteEntries(ctx context.Context, documentID string, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND entry_id = ANY($2)
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, entryIDs); err != nil {
		return fmt.Errorf("delete version entries: %w", err)
	}

	return nil
}

// UpsertEntries bulk-upserts entries keyed on (document_id, entry_id). The
// conflict target is the entry id, never the position: a row that reuses a
// just-freed position must update in place, not collide.
func (r *PostgresVersionRepository) UpsertEntries(ctx context.Context, documentID string, entries []models.PersistedVersionEntry) error {
	if len(entries) == 0 {
		return nil
	}

	entryIDs := make([]string, len(entries))
	positions := make([]int, len(entries))
	codes := make([]string, len(entries))
	timestamps := make([]int64, len(entries))
	labels := make([]string, len(entries))
	kinds := make([]string, len(entries))
	prompts := make([]*string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
		positions[i] = e.Position
		codes[i] = e.Code
		timestamps[i] = e.Timestamp
		labels[i] = e.Label
		kinds[i] = string(e.Kind)
		prompts[i] = e.Prompt
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, entry_id, position, code, timestamp, label, kind, prompt)
		SELECT $1, u.entry_id, u.position, u.code, u.timestamp, u.label, u.kind, u.prompt
		FROM unnest($2::text[], $3::int[], $4::text[], $5::bigint[], $6::text[], $7::text[], $8::text[])
			AS u(entry_id, position, code, timestamp, label, kind, prompt)
		ON CONFLICT (document_id, entry_id) DO UPDATE
		SET position = EXCLUDED.position,
			code = EXCLUDED.code,
			timestamp = EXCLUDED.timestamp,
			label = EXCLUDED.label,
			kind = EXCLUDED.kind,
			prompt = EXCLUDED.prompt
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		documentID, entryIDs, positions, codes, timestamps, labels, kinds, prompts)
	if err != nil {
		return fmt.Errorf("upsert version entries: %w", err)
	}

	return nil
}

// DeleteAllByDocument removes every version row for a document
func (r *PostgresVersionRepository) DeleteAllByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete document versions: %w", err)
	}

	return nil
}
