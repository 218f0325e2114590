package txlog

import "context"

type Repository interface {
	Record(ctx context.Context, e *Entry) error
	MarkConfirmed(ctx context.Context, txHash string, blockNumber uint64, loanID *uint64) error
	GetByTxHash(ctx context.Context, txHash string) (*Entry, error)
	ListByAccount(ctx context.Context, account string) ([]Entry, error)
}
