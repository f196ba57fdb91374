package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/store"
)

// InsertEntities persists the entities of one analysis pass as individual
// rows linked to the document.
func (s *DocumentStore) InsertEntities(ctx context.Context, documentID string, entities []common.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []any{documentID, e.Text, e.Label, e.Start, e.End, now})
	}

	_, err := s.conn.CopyFrom(
		ctx,
		pgx.Identifier{"entities"},
		[]string{"document_id", "entity_text", "entity_type", "start_pos", "end_pos", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entities: %w", err)
	}
	return nil
}

const entitiesByDocumentSQL = `
SELECT id, document_id, entity_text, entity_type, start_pos, end_pos, created_at
FROM entities
WHERE document_id = $1
ORDER BY id;
`

// EntitiesByDocument returns all persisted entities of one document.
func (s *DocumentStore) EntitiesByDocument(ctx context.Context, documentID string) ([]store.Entity, error) {
	rows, err := s.conn.Query(ctx, entitiesByDocumentSQL, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entities: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

const entitiesByTypeSQL = `
SELECT id, document_id, entity_text, entity_type, start_pos, end_pos, created_at
FROM entities
WHERE document_id = $1 AND entity_type = $2
ORDER BY id;
`

// EntitiesByType returns the persisted entities of one document filtered by
// type tag.
func (s *DocumentStore) EntitiesByType(ctx context.Context, documentID, entityType string) ([]store.Entity, error) {
	rows, err := s.conn.Query(ctx, entitiesByTypeSQL, documentID, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to get entities by type: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

func collectEntities(rows pgx.Rows) ([]store.Entity, error) {
	entities := make([]store.Entity, 0)
	for rows.Next() {
		var e store.Entity
		err := rows.Scan(&e.ID, &e.DocumentID, &e.Text, &e.Type, &e.Start, &e.End, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
