// Package txlogmock is a func-field mock of the journal repository.
package txlogmock

import (
	"context"

	"microloan-client/internal/domain/txlog"
)

type Repo struct {
	RecordFn        func(ctx context.Context, e *txlog.Entry) error
	MarkConfirmedFn func(ctx context.Context, txHash string, blockNumber uint64, loanID *uint64) error
	GetByTxHashFn   func(ctx context.Context, txHash string) (*txlog.Entry, error)
	ListByAccountFn func(ctx context.Context, account string) ([]txlog.Entry, error)
}

func (m *Repo) Record(ctx context.Context, e *txlog.Entry) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, e)
	}
	return nil
}

func (m *Repo) MarkConfirmed(ctx context.Context, txHash string, blockNumber uint64, loanID *uint64) error {
	if m.MarkConfirmedFn != nil {
		return m.MarkConfirmedFn(ctx, txHash, blockNumber, loanID)
	}
	return nil
}

func (m *Repo) GetByTxHash(ctx context.Context, txHash string) (*txlog.Entry, error) {
	if m.GetByTxHashFn != nil {
		return m.GetByTxHashFn(ctx, txHash)
	}
	return nil, txlog.ErrNotFound
}

func (m *Repo) ListByAccount(ctx context.Context, account string) ([]txlog.Entry, error) {
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, account)
	}
	return nil, nil
}
