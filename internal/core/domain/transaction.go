package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tags one account's side of a money movement.
type EntryType string

const (
	Deposit        EntryType = "DEPOSIT"
	Withdrawal     EntryType = "WITHDRAWAL"
	TransferIn     EntryType = "TRANSFER_IN"
	TransferOut    EntryType = "TRANSFER_OUT"
	UtilityPayment EntryType = "UTILITY_PAYMENT"
)

// EntryStatus is the recorded outcome of a ledger entry.
type EntryStatus string

const (
	EntrySuccess EntryStatus = "SUCCESS"
	EntryFailed  EntryStatus = "FAILED"
)

// TransactionEntry is one immutable record of a single account's side of a
// money movement. A transfer produces exactly two entries (TRANSFER_OUT on the
// debited account, TRANSFER_IN on the credited one) sharing a TransferID.
// Entries are never updated or deleted once committed.
type TransactionEntry struct {
	EntryID             int64           `json:"entryID"`       // Assigned by the store on insert, monotonically increasing
	AccountNumber       int64           `json:"accountNumber"` // Owning account
	Type                EntryType       `json:"type"`
	Amount              decimal.Decimal `json:"amount"`              // Always positive
	CounterpartyAccount int64           `json:"counterpartyAccount"` // 0 when not applicable
	TransferID          string          `json:"transferID,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"` // Assigned at commit
	Status              EntryStatus     `json:"status"`
	Remarks             string          `json:"remarks"`
}

// MovementResult is the success outcome of a ledger engine operation: the
// updated balance of the account the caller acted on and the committed
// entries (two for a transfer, one otherwise).
type MovementResult struct {
	NewBalance decimal.Decimal    `json:"newBalance"`
	Entries    []TransactionEntry `json:"entries"`
}
