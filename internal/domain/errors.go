package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// LedgerError is a caller-visible rejection of a single ledger operation.
// Code is the client-facing error code (u100 to u108).
type LedgerError struct {
	Kind    string
	Code    uint
	Status  int
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

// CodeString renders the contract-style code, e.g. "u101".
func (e *LedgerError) CodeString() string {
	return fmt.Sprintf("u%d", e.Code)
}

var (
	ErrUnauthorized           = &LedgerError{Kind: "Unauthorized", Code: 100, Status: http.StatusForbidden, Message: "Caller is not authorized for this operation"}
	ErrInvalidAmount          = &LedgerError{Kind: "InvalidAmount", Code: 101, Status: http.StatusBadRequest, Message: "Amount is outside the allowed range"}
	ErrNotFound               = &LedgerError{Kind: "NotFound", Code: 102, Status: http.StatusNotFound, Message: "ISA not found"}
	ErrAlreadyFunded          = &LedgerError{Kind: "AlreadyFunded", Code: 103, Status: http.StatusConflict, Message: "ISA is already fully funded"}
	ErrExceedsAvailableSupply = &LedgerError{Kind: "ExceedsAvailableSupply", Code: 104, Status: http.StatusConflict, Message: "Requested units exceed the remaining supply"}
	ErrInsufficientBalance    = &LedgerError{Kind: "InsufficientBalance", Code: 105, Status: http.StatusConflict, Message: "Insufficient token balance"}
	ErrInvalidPeriod          = &LedgerError{Kind: "InvalidPeriod", Code: 106, Status: http.StatusBadRequest, Message: "Period must be a positive number"}
	ErrPeriodAlreadyReported  = &LedgerError{Kind: "PeriodAlreadyReported", Code: 107, Status: http.StatusConflict, Message: "Income for this period was already reported"}
	ErrBelowMinimumIncome     = &LedgerError{Kind: "BelowMinimumIncome", Code: 108, Status: http.StatusUnprocessableEntity, Message: "Reported income is below the minimum threshold"}
)

// AsLedgerError unwraps err into a *LedgerError when it is one.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
