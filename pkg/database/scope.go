package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope holds one pooled connection for the duration of an operation.
// Repositories read it from the context so a caller controls connection
// lifetime and transactions.
type Scope struct {
	Conn *pgxpool.Conn
}

// Close releases the connection to the pool. Safe to call more than once.
func (s *Scope) Close() {
	if s.Conn == nil {
		return
	}
	s.Conn.Release()
	s.Conn = nil
}

// NewScope acquires a connection from the pool.
// The returned Scope MUST be closed with defer scope.Close().
func (db *DB) NewScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn}, nil
}
