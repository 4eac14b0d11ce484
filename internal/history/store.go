// Package history keeps a journal of performed exchanges so they can be
// reviewed later. The journal is write-only from the exchange's point of
// view: it is never consulted to answer a request.
package history

import (
	"context"
	"time"
)

// Entry records one exchange, successful or not.
type Entry struct {
	ID        string        `json:"id" yaml:"id"`
	CallID    string        `json:"call_id" yaml:"call_id"`
	Method    string        `json:"method" yaml:"method"`
	URI       string        `json:"uri" yaml:"uri"`
	Status    int           `json:"status" yaml:"status"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	BodySize  int           `json:"body_size" yaml:"body_size"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

// Store persists and lists journal entries.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Close() error
}
