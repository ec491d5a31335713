package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/utils/pagination"
)

// memLedgerRepo is an in-memory LedgerRepository with the same semantics as
// the pgsql one: per-account locks taken in ascending order, snapshot reads
// under the lock, and all-or-nothing commit of balance changes and entries.
type memLedgerRepo struct {
	storeMu  sync.Mutex
	accounts map[int64]domain.Account
	entries  []domain.TransactionEntry
	nextID   int64

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex

	failAppend bool
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		accounts: make(map[int64]domain.Account),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (r *memLedgerRepo) putAccount(acc domain.Account) {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	r.accounts[acc.AccountNumber] = acc
}

func (r *memLedgerRepo) balance(acno int64) decimal.Decimal {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	return r.accounts[acno].Balance
}

func (r *memLedgerRepo) entryCount() int {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	return len(r.entries)
}

func (r *memLedgerRepo) lockFor(acno int64) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	if _, ok := r.locks[acno]; !ok {
		r.locks[acno] = &sync.Mutex{}
	}
	return r.locks[acno]
}

type memLedgerTx struct {
	repo     *memLedgerRepo
	snapshot map[int64]domain.Account
	changes  map[int64]decimal.Decimal
	pending  []domain.TransactionEntry
}

func (t *memLedgerTx) Accounts() map[int64]domain.Account {
	return t.snapshot
}

func (t *memLedgerTx) ApplyBalanceChanges(_ context.Context, changes map[int64]decimal.Decimal) error {
	for acno, delta := range changes {
		t.changes[acno] = t.changes[acno].Add(delta)
	}
	return nil
}

func (t *memLedgerTx) AppendEntries(_ context.Context, entries []domain.TransactionEntry) ([]domain.TransactionEntry, error) {
	if t.repo.failAppend {
		return nil, errors.New("append failed")
	}
	saved := make([]domain.TransactionEntry, len(entries))
	for i, e := range entries {
		t.repo.storeMu.Lock()
		t.repo.nextID++
		e.EntryID = t.repo.nextID
		t.repo.storeMu.Unlock()
		saved[i] = e
	}
	t.pending = append(t.pending, saved...)
	return saved, nil
}

func (r *memLedgerRepo) WithAccountsLocked(ctx context.Context, accountNumbers []int64, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	acnos := append([]int64(nil), accountNumbers...)
	sort.Slice(acnos, func(i, j int) bool { return acnos[i] < acnos[j] })

	var held []*sync.Mutex
	seen := make(map[int64]struct{})
	for _, acno := range acnos {
		if _, ok := seen[acno]; ok {
			continue
		}
		seen[acno] = struct{}{}
		m := r.lockFor(acno)
		m.Lock()
		held = append(held, m)
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()

	snapshot := make(map[int64]domain.Account, len(acnos))
	r.storeMu.Lock()
	for _, acno := range acnos {
		if acc, ok := r.accounts[acno]; ok {
			snapshot[acno] = acc
		}
	}
	r.storeMu.Unlock()

	tx := &memLedgerTx{repo: r, snapshot: snapshot, changes: make(map[int64]decimal.Decimal)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	for acno, delta := range tx.changes {
		acc := r.accounts[acno]
		acc.Balance = acc.Balance.Add(delta)
		r.accounts[acno] = acc
	}
	r.entries = append(r.entries, tx.pending...)
	return nil
}

func (r *memLedgerRepo) FindEntriesByAccount(_ context.Context, accountNumber int64, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error) {
	offset, err := pagination.DecodeToken(nextToken)
	if err != nil {
		return nil, nil, err
	}

	r.storeMu.Lock()
	var matched []domain.TransactionEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].AccountNumber == accountNumber {
			matched = append(matched, r.entries[i])
		}
	}
	r.storeMu.Unlock()

	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[offset:end]
	return page, pagination.NextToken(offset, limit, len(page)), nil
}

var _ portsrepo.LedgerRepository = (*memLedgerRepo)(nil)

type LedgerServiceTestSuite struct {
	suite.Suite
	repo *memLedgerRepo
	svc  portssvc.LedgerSvcFacade
	ctx  context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.repo = newMemLedgerRepo()
	s.svc = NewLedgerService(s.repo, nil)
	s.ctx = context.Background()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) seedAccount(acno int64, balance string) {
	s.repo.putAccount(domain.Account{
		AccountNumber: acno,
		UserID:        "user-" + decimal.NewFromInt(acno).String(),
		Status:        domain.AccountActive,
		Balance:       decimal.RequireFromString(balance),
	})
}

func (s *LedgerServiceTestSuite) TestDeposit() {
	s.seedAccount(1001, "500")

	result, err := s.svc.Deposit(s.ctx, 1001, decimal.RequireFromString("100"), "teller-1")
	s.Require().NoError(err)

	s.True(result.NewBalance.Equal(decimal.RequireFromString("600")))
	s.Require().Len(result.Entries, 1)
	s.Equal(domain.Deposit, result.Entries[0].Type)
	s.Equal("Cash Deposit", result.Entries[0].Remarks)
	s.Equal(domain.EntrySuccess, result.Entries[0].Status)
	s.NotZero(result.Entries[0].EntryID)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("600")))
}

func (s *LedgerServiceTestSuite) TestDepositRejectsNonPositiveAmount() {
	s.seedAccount(1001, "500")

	for _, amount := range []string{"0", "-5"} {
		_, err := s.svc.Deposit(s.ctx, 1001, decimal.RequireFromString(amount), "teller-1")
		s.ErrorIs(err, apperrors.ErrInvalidAmount, "amount %s", amount)
	}
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")))
	s.Zero(s.repo.entryCount())
}

func (s *LedgerServiceTestSuite) TestDepositUnknownAccount() {
	_, err := s.svc.Deposit(s.ctx, 9999, decimal.RequireFromString("10"), "teller-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestDepositFrozenAccount() {
	s.repo.putAccount(domain.Account{
		AccountNumber: 1001,
		Status:        domain.AccountFrozen,
		Balance:       decimal.RequireFromString("500"),
	})

	_, err := s.svc.Deposit(s.ctx, 1001, decimal.RequireFromString("10"), "teller-1")
	s.ErrorIs(err, apperrors.ErrAccountNotActive)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")))
}

func (s *LedgerServiceTestSuite) TestWithdraw() {
	s.seedAccount(1001, "500")

	result, err := s.svc.Withdraw(s.ctx, 1001, decimal.RequireFromString("120"), "teller-1")
	s.Require().NoError(err)

	s.True(result.NewBalance.Equal(decimal.RequireFromString("380")))
	s.Require().Len(result.Entries, 1)
	s.Equal(domain.Withdrawal, result.Entries[0].Type)
	s.Equal("Cash Withdrawal", result.Entries[0].Remarks)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("380")))
}

func (s *LedgerServiceTestSuite) TestWithdrawInsufficientFunds() {
	s.seedAccount(1001, "100")

	_, err := s.svc.Withdraw(s.ctx, 1001, decimal.RequireFromString("150"), "teller-1")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("100")))
	s.Zero(s.repo.entryCount())
}

func (s *LedgerServiceTestSuite) TestWithdrawExactBalance() {
	s.seedAccount(1001, "100")

	result, err := s.svc.Withdraw(s.ctx, 1001, decimal.RequireFromString("100"), "teller-1")
	s.Require().NoError(err)
	s.True(result.NewBalance.IsZero())
}

func (s *LedgerServiceTestSuite) TestTransfer() {
	s.seedAccount(1001, "500")
	s.seedAccount(1002, "100")

	result, err := s.svc.Transfer(s.ctx, 1001, 1002, decimal.RequireFromString("200"), "user-1001")
	s.Require().NoError(err)

	s.True(result.NewBalance.Equal(decimal.RequireFromString("300")))
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("300")))
	s.True(s.repo.balance(1002).Equal(decimal.RequireFromString("300")))

	s.Require().Len(result.Entries, 2)
	out, in := result.Entries[0], result.Entries[1]
	s.Equal(domain.TransferOut, out.Type)
	s.Equal(domain.TransferIn, in.Type)
	s.Equal("To Account 1002", out.Remarks)
	s.Equal("From Account 1001", in.Remarks)
	s.Equal(int64(1002), out.CounterpartyAccount)
	s.Equal(int64(1001), in.CounterpartyAccount)
	s.NotEmpty(out.TransferID)
	s.Equal(out.TransferID, in.TransferID)
}

func (s *LedgerServiceTestSuite) TestTransferToSelf() {
	s.seedAccount(1001, "500")

	_, err := s.svc.Transfer(s.ctx, 1001, 1001, decimal.RequireFromString("50"), "user-1001")
	s.ErrorIs(err, apperrors.ErrSelfTransfer)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")))
}

func (s *LedgerServiceTestSuite) TestTransferInsufficientFundsLeavesBothUntouched() {
	s.seedAccount(1001, "100")
	s.seedAccount(1002, "100")

	_, err := s.svc.Transfer(s.ctx, 1001, 1002, decimal.RequireFromString("150"), "user-1001")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("100")))
	s.True(s.repo.balance(1002).Equal(decimal.RequireFromString("100")))
	s.Zero(s.repo.entryCount())
}

func (s *LedgerServiceTestSuite) TestTransferUnknownDestination() {
	s.seedAccount(1001, "500")

	_, err := s.svc.Transfer(s.ctx, 1001, 9999, decimal.RequireFromString("50"), "user-1001")
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")))
}

func (s *LedgerServiceTestSuite) TestPayBill() {
	s.seedAccount(1001, "500")

	result, err := s.svc.PayBill(s.ctx, 1001, decimal.RequireFromString("80"), "City Power", "user-1001")
	s.Require().NoError(err)

	s.True(result.NewBalance.Equal(decimal.RequireFromString("420")))
	s.Require().Len(result.Entries, 1)
	s.Equal(domain.UtilityPayment, result.Entries[0].Type)
	s.Equal("Paid City Power", result.Entries[0].Remarks)
}

func (s *LedgerServiceTestSuite) TestPayBillRequiresPayee() {
	s.seedAccount(1001, "500")

	_, err := s.svc.PayBill(s.ctx, 1001, decimal.RequireFromString("80"), "", "user-1001")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")))
}

func (s *LedgerServiceTestSuite) TestRollbackOnEntryWriteFailure() {
	s.seedAccount(1001, "500")
	s.repo.failAppend = true

	_, err := s.svc.Deposit(s.ctx, 1001, decimal.RequireFromString("100"), "teller-1")
	s.Require().Error(err)

	s.True(s.repo.balance(1001).Equal(decimal.RequireFromString("500")), "balance must not move when the log write fails")
	s.Zero(s.repo.entryCount())
}

func (s *LedgerServiceTestSuite) TestConcurrentDeposits() {
	s.seedAccount(1001, "0")

	const workers = 1000
	one := decimal.NewFromInt(1)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.svc.Deposit(s.ctx, 1001, one, "teller-1")
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	s.True(s.repo.balance(1001).Equal(decimal.NewFromInt(workers)))
	s.Equal(workers, s.repo.entryCount())
}

func (s *LedgerServiceTestSuite) TestConcurrentTransfersConserveTotal() {
	s.seedAccount(1001, "500")
	s.seedAccount(1002, "500")

	amount := decimal.NewFromInt(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			// Insufficient funds is an acceptable outcome under contention.
			_, _ = s.svc.Transfer(s.ctx, 1001, 1002, amount, "user-1001")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.svc.Transfer(s.ctx, 1002, 1001, amount, "user-1002")
		}()
	}
	wg.Wait()

	a, b := s.repo.balance(1001), s.repo.balance(1002)
	s.True(a.Add(b).Equal(decimal.NewFromInt(1000)), "total must be conserved, got %s + %s", a, b)
	s.False(a.IsNegative())
	s.False(b.IsNegative())
}

func (s *LedgerServiceTestSuite) TestListEntriesPagination() {
	s.seedAccount(1001, "0")
	one := decimal.NewFromInt(1)
	for i := 0; i < 5; i++ {
		_, err := s.svc.Deposit(s.ctx, 1001, one, "teller-1")
		s.Require().NoError(err)
	}

	page1, err := s.svc.ListEntries(s.ctx, 1001, dto.ListEntriesParams{Limit: 3})
	s.Require().NoError(err)
	s.Len(page1.Entries, 3)
	s.Require().NotNil(page1.NextToken)

	page2, err := s.svc.ListEntries(s.ctx, 1001, dto.ListEntriesParams{Limit: 3, NextToken: page1.NextToken})
	s.Require().NoError(err)
	s.Len(page2.Entries, 2)
	s.Nil(page2.NextToken)

	// Newest first across the pages.
	require.Greater(s.T(), page1.Entries[0].EntryID, page1.Entries[1].EntryID)
	require.Greater(s.T(), page1.Entries[2].EntryID, page2.Entries[0].EntryID)
}
