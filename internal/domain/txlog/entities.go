// Package txlog is the local journal of submitted contract writes.
// Loans themselves are remote contract state and never stored; the
// journal only records what this client sent and whether it
// confirmed, so value-transferring operations are auditable and never
// blindly retried.
package txlog

import (
	"errors"
	"time"
)

type Operation string

const (
	OpCreate  Operation = "create"
	OpFund    Operation = "fund"
	OpRepay   Operation = "repay"
	OpDefault Operation = "default"
)

type EntryStatus string

const (
	StatusSubmitted EntryStatus = "submitted"
	StatusConfirmed EntryStatus = "confirmed"
)

var ErrNotFound = errors.New("journal entry not found")

type Entry struct {
	ID          uint64      `gorm:"primaryKey;column:id" json:"-"`
	TxHash      string      `gorm:"size:66;uniqueIndex:ux_txlog_hash" json:"tx_hash"`
	Operation   Operation   `gorm:"size:16;column:operation" json:"operation"`
	LoanID      *uint64     `gorm:"column:loan_id;index" json:"loan_id,omitempty"`
	Account     string      `gorm:"size:42;index:idx_txlog_account" json:"account"`
	ValueWei    string      `gorm:"size:80;column:value_wei" json:"value_wei"`
	Status      EntryStatus `gorm:"size:16;default:'submitted'" json:"status"`
	BlockNumber uint64      `gorm:"column:block_number" json:"block_number,omitempty"`
	SubmittedAt time.Time   `gorm:"autoCreateTime" json:"submitted_at"`
	ConfirmedAt *time.Time  `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
}

func (Entry) TableName() string { return "tx_journal" }
