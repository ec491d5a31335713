package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// ledgerService is the ledger engine. It validates each operation, acquires
// the account locks through the repository's atomic primitive, checks
// balances against the locked snapshots (never against stale reads), applies
// the balance changes and appends the matching transaction log entries —
// all inside one transaction boundary.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepository
	auditSvc   portssvc.AuditSvcFacade
}

// NewLedgerService creates the ledger engine. auditSvc may be nil; audit
// recording is then skipped.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository, auditSvc portssvc.AuditSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		auditSvc:   auditSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Deposit credits the account and records one DEPOSIT entry.
func (s *ledgerService) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var result *domain.MovementResult
	err := s.ledgerRepo.WithAccountsLocked(ctx, []int64{accountNumber}, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		acc, err := lockedActiveAccount(tx, accountNumber)
		if err != nil {
			return err
		}

		changes := map[int64]decimal.Decimal{accountNumber: amount}
		if err := tx.ApplyBalanceChanges(ctx, changes); err != nil {
			return err
		}

		entries, err := tx.AppendEntries(ctx, []domain.TransactionEntry{{
			AccountNumber: accountNumber,
			Type:          domain.Deposit,
			Amount:        amount,
			CreatedAt:     now,
			Status:        domain.EntrySuccess,
			Remarks:       "Cash Deposit",
		}})
		if err != nil {
			return err
		}

		result = &domain.MovementResult{
			NewBalance: acc.Balance.Add(amount),
			Entries:    entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deposit committed",
		slog.Int64("account_number", accountNumber),
		slog.String("amount", amount.String()),
		slog.Int64("entry_id", result.Entries[0].EntryID),
	)
	s.recordAudit(ctx, initiatorUserID, "DEPOSIT", fmt.Sprintf("Deposited %s to account %d", amount.String(), accountNumber))
	return result, nil
}

// Withdraw debits the account and records one WITHDRAWAL entry.
func (s *ledgerService) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error) {
	result, err := s.debit(ctx, accountNumber, amount, domain.Withdrawal, "Cash Withdrawal")
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, initiatorUserID, "WITHDRAWAL", fmt.Sprintf("Withdrew %s from account %d", amount.String(), accountNumber))
	return result, nil
}

// PayBill debits the account like Withdraw but records a UTILITY_PAYMENT
// entry naming the payee. Payee validation beyond a non-empty name is not
// business logic here; the presentation layer owns payee selection.
func (s *ledgerService) PayBill(ctx context.Context, accountNumber int64, amount decimal.Decimal, payee string, initiatorUserID string) (*domain.MovementResult, error) {
	if payee == "" {
		return nil, fmt.Errorf("%w: payee is required", apperrors.ErrValidation)
	}
	result, err := s.debit(ctx, accountNumber, amount, domain.UtilityPayment, "Paid "+payee)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, initiatorUserID, "UTILITY_PAYMENT", fmt.Sprintf("Paid %s to %s from account %d", amount.String(), payee, accountNumber))
	return result, nil
}

// debit is the shared core of Withdraw and PayBill: one account, balance
// must cover the amount, one log entry.
func (s *ledgerService) debit(ctx context.Context, accountNumber int64, amount decimal.Decimal, entryType domain.EntryType, remarks string) (*domain.MovementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var result *domain.MovementResult
	err := s.ledgerRepo.WithAccountsLocked(ctx, []int64{accountNumber}, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		acc, err := lockedActiveAccount(tx, accountNumber)
		if err != nil {
			return err
		}
		if acc.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, acc.Balance.String(), amount.String())
		}

		changes := map[int64]decimal.Decimal{accountNumber: amount.Neg()}
		if err := tx.ApplyBalanceChanges(ctx, changes); err != nil {
			return err
		}

		entries, err := tx.AppendEntries(ctx, []domain.TransactionEntry{{
			AccountNumber: accountNumber,
			Type:          entryType,
			Amount:        amount,
			CreatedAt:     now,
			Status:        domain.EntrySuccess,
			Remarks:       remarks,
		}})
		if err != nil {
			return err
		}

		result = &domain.MovementResult{
			NewBalance: acc.Balance.Sub(amount),
			Entries:    entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Debit committed",
		slog.Int64("account_number", accountNumber),
		slog.String("type", string(entryType)),
		slog.String("amount", amount.String()),
		slog.Int64("entry_id", result.Entries[0].EntryID),
	)
	return result, nil
}

// Transfer moves amount between two distinct accounts as one atomic unit:
// debit, credit and both log entries commit together or not at all. Both
// locks are held before either balance moves; the repository acquires them
// in ascending account-number order regardless of transfer direction.
func (s *ledgerService) Transfer(ctx context.Context, fromAccount, toAccount int64, amount decimal.Decimal, initiatorUserID string) (*domain.MovementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if fromAccount == toAccount {
		return nil, fmt.Errorf("%w: account %d", apperrors.ErrSelfTransfer, fromAccount)
	}

	now := time.Now().UTC()
	transferID := uuid.NewString()

	var result *domain.MovementResult
	err := s.ledgerRepo.WithAccountsLocked(ctx, []int64{fromAccount, toAccount}, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		from, err := lockedActiveAccount(tx, fromAccount)
		if err != nil {
			return err
		}
		to, err := lockedActiveAccount(tx, toAccount)
		if err != nil {
			return err
		}
		if from.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, from.Balance.String(), amount.String())
		}

		changes := map[int64]decimal.Decimal{
			fromAccount: amount.Neg(),
			toAccount:   amount,
		}
		if err := tx.ApplyBalanceChanges(ctx, changes); err != nil {
			return err
		}

		entries, err := tx.AppendEntries(ctx, []domain.TransactionEntry{
			{
				AccountNumber:       fromAccount,
				Type:                domain.TransferOut,
				Amount:              amount,
				CounterpartyAccount: to.AccountNumber,
				TransferID:          transferID,
				CreatedAt:           now,
				Status:              domain.EntrySuccess,
				Remarks:             fmt.Sprintf("To Account %d", toAccount),
			},
			{
				AccountNumber:       toAccount,
				Type:                domain.TransferIn,
				Amount:              amount,
				CounterpartyAccount: from.AccountNumber,
				TransferID:          transferID,
				CreatedAt:           now,
				Status:              domain.EntrySuccess,
				Remarks:             fmt.Sprintf("From Account %d", fromAccount),
			},
		})
		if err != nil {
			return err
		}

		result = &domain.MovementResult{
			NewBalance: from.Balance.Sub(amount),
			Entries:    entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Transfer committed",
		slog.Int64("from_account", fromAccount),
		slog.Int64("to_account", toAccount),
		slog.String("amount", amount.String()),
		slog.String("transfer_id", transferID),
	)
	s.recordAudit(ctx, initiatorUserID, "TRANSFER", fmt.Sprintf("Transferred %s from account %d to account %d", amount.String(), fromAccount, toAccount))
	return result, nil
}

// ListEntries returns the account's transaction log, most recent first.
func (s *ledgerService) ListEntries(ctx context.Context, accountNumber int64, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.ledgerRepo.FindEntriesByAccount(ctx, accountNumber, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transaction entries", slog.Int64("account_number", accountNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve transaction entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// recordAudit writes an operator audit record; failures never surface.
func (s *ledgerService) recordAudit(ctx context.Context, userID, action, details string) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Record(ctx, userID, action, details)
}

// validateAmount rejects non-positive amounts before any lock is taken.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return nil
}

// lockedActiveAccount pulls one account out of the locked snapshot and
// checks it can take part in a ledger operation.
func lockedActiveAccount(tx portsrepo.LedgerTx, accountNumber int64) (domain.Account, error) {
	acc, ok := tx.Accounts()[accountNumber]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountNumber)
	}
	if !acc.IsActive() {
		return domain.Account{}, fmt.Errorf("%w: account %d is %s", apperrors.ErrAccountNotActive, accountNumber, acc.Status)
	}
	return acc, nil
}
