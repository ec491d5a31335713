// Package models contains the database row representations. They mirror the
// table layouts and are converted to and from domain types at the repository
// boundary.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

type Account struct {
	AccountNumber int64           `db:"acno"`
	UserID        string          `db:"user_id"`
	Name          string          `db:"name"`
	MobileNumber  string          `db:"mobile_number"`
	AccountType   string          `db:"account_type"`
	Status        string          `db:"status"`
	Balance       decimal.Decimal `db:"balance"`
	AuditFields
}

type TransactionEntry struct {
	EntryID             int64           `db:"entry_id"`
	AccountNumber       int64           `db:"acno"`
	EntryType           string          `db:"entry_type"`
	Amount              decimal.Decimal `db:"amount"`
	CounterpartyAccount int64           `db:"counterparty_acno"`
	TransferID          string          `db:"transfer_id"`
	Status              string          `db:"status"`
	Remarks             string          `db:"remarks"`
	CreatedAt           time.Time       `db:"created_at"`
}

type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Mobile       string `db:"mobile"`
	Role         string `db:"role"`
	Status       string `db:"status"`
	AuditFields
}

type AuditEntry struct {
	LogID     int64     `db:"log_id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}
