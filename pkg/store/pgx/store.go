// Package pgx implements the document store on PostgreSQL via pgx.
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore is the Postgres-backed store implementation.
type DocumentStore struct {
	conn *pgxpool.Pool
}

// New creates a store backed by the given connection pool.
func New(conn *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{conn: conn}
}
