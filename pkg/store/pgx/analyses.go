package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/store"
)

const insertAnalysisSQL = `
INSERT INTO analyses (document_id, analysis_type, result, analyzed_at)
VALUES ($1, $2, $3, $4);
`

// InsertAnalysis appends one analysis record. Records are append-only;
// history is not deduplicated.
func (s *DocumentStore) InsertAnalysis(ctx context.Context, result *common.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = s.conn.Exec(ctx, insertAnalysisSQL,
		result.DocumentID, "complete", payload, result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

const latestAnalysisSQL = `
SELECT result
FROM analyses
WHERE document_id = $1 AND analysis_type = 'complete'
ORDER BY analyzed_at DESC
LIMIT 1;
`

// LatestAnalysis returns the most recent complete analysis of one document,
// store.ErrNotFound when none exists.
func (s *DocumentStore) LatestAnalysis(ctx context.Context, documentID string) (*common.AnalysisResult, error) {
	var payload []byte
	err := s.conn.QueryRow(ctx, latestAnalysisSQL, documentID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var result common.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &result, nil
}

const statsSQL = `
SELECT
	(SELECT count(*) FROM documents),
	(SELECT count(*) FROM entities),
	(SELECT count(*) FROM analyses);
`

const typeCountsSQL = `
SELECT file_type, count(*)
FROM documents
GROUP BY file_type
ORDER BY count(*) DESC;
`

// Stats aggregates store-wide totals and the document type distribution.
func (s *DocumentStore) Stats(ctx context.Context) (*store.Statistics, error) {
	var stats store.Statistics
	err := s.conn.QueryRow(ctx, statsSQL).Scan(
		&stats.TotalDocuments, &stats.TotalEntities, &stats.TotalAnalyses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get store totals: %w", err)
	}

	rows, err := s.conn.Query(ctx, typeCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to get type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc store.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		stats.DocumentTypes = append(stats.DocumentTypes, tc)
	}
	return &stats, rows.Err()
}
