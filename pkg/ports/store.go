package ports

import (
	"context"

	"github.com/aretw0/tether/pkg/domain"
)

// HistoryStore defines the interface for the invocation journal.
// Implementations may drop old records to stay within a capacity bound.
type HistoryStore interface {
	// Append records one finished invocation.
	Append(ctx context.Context, rec domain.Record) error

	// Recent returns up to limit records, newest first.
	// A limit <= 0 returns every retained record.
	Recent(ctx context.Context, limit int) ([]domain.Record, error)
}
