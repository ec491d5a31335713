package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType is the product category of a bank account.
type AccountType string

const (
	Savings AccountType = "SAVINGS"
	Current AccountType = "CURRENT"
)

// AccountStatus is the lifecycle state of an account.
// Only ACTIVE accounts may move money; status transitions are performed by
// the account service, never by the ledger engine.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountFrozen AccountStatus = "FROZEN"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents a bank account within the core domain.
// The account number is assigned by the store at creation and is immutable.
// Balance is written only through the ledger engine; it stays >= 0 after
// every committed operation.
type Account struct {
	AccountNumber int64           `json:"accountNumber"` // Primary key, assigned from a DB sequence
	UserID        string          `json:"userID"`        // Owner; at most one account per user
	Name          string          `json:"name"`          // Display name on the account
	MobileNumber  string          `json:"mobileNumber"`
	AccountType   AccountType     `json:"accountType"`
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"` // Fixed-point decimal, never binary float
	AuditFields
}

// IsActive reports whether the account may take part in ledger operations.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}
