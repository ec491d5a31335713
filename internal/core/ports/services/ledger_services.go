package services

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the ledger engine: the sole writer of account balances
// and transaction log entries. Every operation is atomic — either the balance
// change and its log entries all commit, or nothing does. Business-rule
// violations come back as typed apperrors sentinels, never as partial state.
type LedgerSvcFacade interface {
	// Deposit credits the account and records one DEPOSIT entry.
	Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error)

	// Withdraw debits the account and records one WITHDRAWAL entry.
	Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error)

	// Transfer moves amount between two distinct accounts, recording a
	// TRANSFER_OUT entry on the source and a TRANSFER_IN entry on the
	// destination that share one transfer ID.
	Transfer(ctx context.Context, fromAccount, toAccount int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error)

	// PayBill debits the account like Withdraw but records a UTILITY_PAYMENT
	// entry naming the payee in the remarks.
	PayBill(ctx context.Context, accountNumber int64, amount decimal.Decimal, payee string, initiatorUserID string) (*domain.MovementResult, error)

	// ListEntries returns the account's transaction log, most recent first.
	ListEntries(ctx context.Context, accountNumber int64, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}
