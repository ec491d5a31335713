package dto

import (
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	UserID         string             `json:"userID" binding:"required"`
	Name           string             `json:"name" binding:"required"`
	MobileNumber   string             `json:"mobileNumber" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=SAVINGS CURRENT"`
	OpeningDeposit decimal.Decimal    `json:"openingDeposit"` // Optional; booked as a DEPOSIT entry after creation
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountNumber int64                `json:"accountNumber"`
	UserID        string               `json:"userID"`
	Name          string               `json:"name"`
	MobileNumber  string               `json:"mobileNumber"`
	AccountType   domain.AccountType   `json:"accountType"`
	Status        domain.AccountStatus `json:"status"`
	Balance       decimal.Decimal      `json:"balance"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

// UpdateAccountStatusRequest transitions an account's lifecycle status.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE FROZEN CLOSED"`
}

// UpdateContactRequest updates account contact details.
type UpdateContactRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: acc.AccountNumber,
		UserID:        acc.UserID,
		Name:          acc.Name,
		MobileNumber:  acc.MobileNumber,
		AccountType:   acc.AccountType,
		Status:        acc.Status,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to the list DTO.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return ListAccountsResponse{Accounts: res}
}
