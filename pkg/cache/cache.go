// Package cache defines the expiring cache the analysis pipeline writes
// results to. The cache is best-effort: every operation degrades to a miss or
// no-op when the backend is unavailable, and callers always fall back to the
// persisted store as source of truth.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default expirations for the two cached record kinds.
const (
	DocumentTTL = time.Hour
	AnalysisTTL = 2 * time.Hour
)

// Cache is a TTL key-value cache. Implementations must never propagate
// backend errors; failures surface as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	DeletePrefix(ctx context.Context, prefix string) int
	Close() error
}

// AnalysisKey is the cache key for an analysis result of a given type.
func AnalysisKey(documentID, analysisType string) string {
	return fmt.Sprintf("analysis:%s:%s", documentID, analysisType)
}

// AnalysisPrefix matches every cached analysis of one document.
func AnalysisPrefix(documentID string) string {
	return fmt.Sprintf("analysis:%s:", documentID)
}

// DocumentKey is the cache key for a document record.
func DocumentKey(documentID string) string {
	return fmt.Sprintf("doc:%s", documentID)
}
