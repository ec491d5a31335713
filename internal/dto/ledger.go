package dto

import (
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest credits an account.
type DepositRequest struct {
	AccountNumber int64           `json:"accountNumber" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// WithdrawRequest debits an account.
type WithdrawRequest struct {
	AccountNumber int64           `json:"accountNumber" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// TransferRequest moves funds between two accounts.
type TransferRequest struct {
	FromAccount int64           `json:"fromAccount" binding:"required"`
	ToAccount   int64           `json:"toAccount" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// PayBillRequest pays a utility bill from an account.
type PayBillRequest struct {
	AccountNumber int64           `json:"accountNumber" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Payee         string          `json:"payee" binding:"required"`
}

// EntryResponse is one transaction log entry.
type EntryResponse struct {
	EntryID             int64              `json:"entryID"`
	AccountNumber       int64              `json:"accountNumber"`
	Type                domain.EntryType   `json:"type"`
	Amount              decimal.Decimal    `json:"amount"`
	CounterpartyAccount int64              `json:"counterpartyAccount,omitempty"`
	TransferID          string             `json:"transferID,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	Status              domain.EntryStatus `json:"status"`
	Remarks             string             `json:"remarks"`
}

// MovementResponse is the success result of a ledger operation.
type MovementResponse struct {
	NewBalance decimal.Decimal `json:"newBalance"`
	Entries    []EntryResponse `json:"entries"`
}

// ListEntriesParams defines query parameters for listing transaction entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of transaction entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.TransactionEntry to its DTO.
func ToEntryResponse(e domain.TransactionEntry) EntryResponse {
	return EntryResponse{
		EntryID:             e.EntryID,
		AccountNumber:       e.AccountNumber,
		Type:                e.Type,
		Amount:              e.Amount,
		CounterpartyAccount: e.CounterpartyAccount,
		TransferID:          e.TransferID,
		CreatedAt:           e.CreatedAt,
		Status:              e.Status,
		Remarks:             e.Remarks,
	}
}

// ToEntryResponses converts a slice of entries.
func ToEntryResponses(entries []domain.TransactionEntry) []EntryResponse {
	res := make([]EntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToEntryResponse(e)
	}
	return res
}

// ToMovementResponse converts a domain.MovementResult to its DTO.
func ToMovementResponse(m *domain.MovementResult) MovementResponse {
	return MovementResponse{
		NewBalance: m.NewBalance,
		Entries:    ToEntryResponses(m.Entries),
	}
}
