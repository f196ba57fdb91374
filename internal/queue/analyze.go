package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doculens/backend/pkg/analysis"
	"github.com/doculens/backend/pkg/cache"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/leaselock"
	"github.com/doculens/backend/pkg/logger"
	"github.com/doculens/backend/pkg/store"
)

// ProcessAnalyzeMessage runs one analysis job. A Postgres lease keyed by
// document ID single-flights concurrent requests for the same document: the
// loser acks its message without running anything. Returning an error sends
// the message to the retry loop.
func ProcessAnalyzeMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	docStore store.Store,
	docCache cache.Cache,
	engine *analysis.Engine,
	msg string,
) error {
	data := new(AnalyzeMessage)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	document, err := docStore.GetDocument(ctx, data.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("[Queue] Dropping analysis job for missing document", "document_id", data.DocumentID)
			return nil
		}
		return err
	}

	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, leaselock.DocumentKey(document.ID), leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			logger.Info("[Queue] Skipping analysis: already in flight", "document_id", document.ID)
			return nil
		}
		return err
	}
	defer func() {
		if releaseErr := lease.Release(context.Background()); releaseErr != nil {
			logger.Warn("[Queue] Failed to release analysis lease", "document_id", document.ID, "err", releaseErr)
		}
	}()

	status := common.StatusProcessing
	if _, err := docStore.UpdateDocument(lease.Context, document.ID, store.DocumentUpdate{
		AnalysisStatus: &status,
	}); err != nil {
		return err
	}

	result, err := engine.Analyze(lease.Context, document.ID, document.TextContent, data.Force)
	if err != nil {
		if errors.Is(err, analysis.ErrNoText) {
			markNoTextFailure(ctx, docStore, document.ID)
			docCache.Delete(ctx, cache.DocumentKey(document.ID))
			return nil
		}
		return err
	}

	// The document record changed under the cached copy either way.
	docCache.Delete(ctx, cache.DocumentKey(document.ID))

	logger.Info("[Queue] Analysis job finished",
		"document_id", document.ID,
		"status", result.Status,
	)
	return nil
}

// markNoTextFailure records the one failure mode that must not retry: a
// document with no extractable text will never succeed no matter how often
// the job is replayed.
func markNoTextFailure(ctx context.Context, docStore store.Store, documentID string) {
	status := common.StatusFailed
	message := analysis.ErrNoText.Error()
	if _, err := docStore.UpdateDocument(ctx, documentID, store.DocumentUpdate{
		AnalysisStatus: &status,
		AnalysisError:  &message,
	}); err != nil {
		logger.Error("[Queue] Failed to mark empty document as failed", "document_id", documentID, "err", err)
	}
}
