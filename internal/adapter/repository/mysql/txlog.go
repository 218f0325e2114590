package mysql

import (
	"context"
	"errors"
	"time"

	"microloan-client/internal/domain/txlog"

	"gorm.io/gorm"
)

type TxLogRepository struct{ db *gorm.DB }

func NewTxLogRepository(db *gorm.DB) *TxLogRepository { return &TxLogRepository{db: db} }

func (r *TxLogRepository) Record(ctx context.Context, e *txlog.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// MarkConfirmed flips a submitted entry to confirmed. loanID is only
// known after the receipt for createLoan, so it is patched in here.
func (r *TxLogRepository) MarkConfirmed(ctx context.Context, txHash string, blockNumber uint64, loanID *uint64) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":       txlog.StatusConfirmed,
		"block_number": blockNumber,
		"confirmed_at": &now,
	}
	if loanID != nil {
		updates["loan_id"] = *loanID
	}
	res := r.db.WithContext(ctx).
		Model(&txlog.Entry{}).
		Where("tx_hash = ?", txHash).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return txlog.ErrNotFound
	}
	return nil
}

func (r *TxLogRepository) GetByTxHash(ctx context.Context, txHash string) (*txlog.Entry, error) {
	var out txlog.Entry
	res := r.db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, txlog.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *TxLogRepository) ListByAccount(ctx context.Context, account string) ([]txlog.Entry, error) {
	var out []txlog.Entry
	res := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("submitted_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
