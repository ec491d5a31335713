package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidAmount indicates a non-positive amount on a ledger operation.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInsufficientFunds indicates the debited account cannot cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountNotActive indicates the account is frozen or closed.
var ErrAccountNotActive = errors.New("account is not active")

// ErrSelfTransfer indicates source and destination account are the same.
var ErrSelfTransfer = errors.New("cannot transfer to the same account")

// ErrDuplicateOwner indicates the user already has a bank account linked.
var ErrDuplicateOwner = errors.New("user already has an account")

// ErrDuplicate indicates an attempt to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrBusy indicates lock acquisition timed out under contention.
// Safe for the caller to retry.
var ErrBusy = errors.New("operation timed out waiting for account locks")

// ErrForbidden indicates the authenticated user may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrStorage indicates an underlying persistence failure during commit.
// Nothing was committed, so a retry is safe from the ledger's perspective.
var ErrStorage = errors.New("storage failure")
