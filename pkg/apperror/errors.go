package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError carrying the same code, so that
// errors.Is(err, apperror.ErrNegativeAmount(apperror.OpWithdraw)) matches by kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Op names the wallet operation a validation error was raised by.
type Op string

const (
	OpDeposit  Op = "deposit"
	OpWithdraw Op = "withdraw"
	OpTransfer Op = "transfer"
)

// prefix maps an operation to its error code family.
func (o Op) prefix() string {
	switch o {
	case OpDeposit:
		return "DEP"
	case OpWithdraw:
		return "WDR"
	case OpTransfer:
		return "TRF"
	default:
		return "OPS"
	}
}

// ---- Wallet construction (WLT) ----

func ErrNegativeBalance() *AppError {
	return New("WLT_001", "Opening balance cannot be negative", http.StatusBadRequest)
}

func ErrInvalidBalance() *AppError {
	return New("WLT_002", "Opening balance must be a finite number", http.StatusBadRequest)
}

// ---- Amount validation (DEP / WDR / TRF) ----
//
// Codes are stable per (operation, rule):
//   _001 insufficient funds (withdraw, transfer only)
//   _002 negative amount (DEP_001 for deposit)
//   _003 not a multiple of ten (DEP_002 for deposit)
//   _004 amount too large (DEP_003 for deposit)

func ErrInsufficientFunds(op Op) *AppError {
	return New(op.prefix()+"_001", fmt.Sprintf("Insufficient funds for %s", op), http.StatusPaymentRequired)
}

func ErrNegativeAmount(op Op) *AppError {
	code := op.prefix() + "_002"
	if op == OpDeposit {
		code = "DEP_001"
	}
	return New(code, fmt.Sprintf("Negative %s amount", op), http.StatusBadRequest)
}

func ErrNotAMultipleOfTen(op Op) *AppError {
	code := op.prefix() + "_003"
	if op == OpDeposit {
		code = "DEP_002"
	}
	return New(code, fmt.Sprintf("%s amount must be a multiple of 10", op), http.StatusBadRequest)
}

func ErrAmountTooLarge(op Op) *AppError {
	code := op.prefix() + "_004"
	if op == OpDeposit {
		code = "DEP_003"
	}
	return New(code, fmt.Sprintf("%s amount exceeds the 50000 limit", op), http.StatusUnprocessableEntity)
}

// ---- Missing collaborators (ARG) ----

func ErrNullDestination() *AppError {
	return New("ARG_001", "Destination wallet is required", http.StatusBadRequest)
}

func ErrNullArgument(name string) *AppError {
	return New("ARG_002", fmt.Sprintf("%s is required", name), http.StatusBadRequest)
}

// ---- Currency conversion (CNV) ----

func ErrInvalidRate() *AppError {
	return New("CNV_001", "Exchange rate must be positive", http.StatusBadRequest)
}

func ErrNegativeConversionInput() *AppError {
	return New("CNV_002", "Conversion amount must be non-negative", http.StatusBadRequest)
}

func ErrInvalidConversion() *AppError {
	return New("CNV_003", "Conversion result is not a representable amount", http.StatusUnprocessableEntity)
}

func ErrUnknownRatePair(pair string) *AppError {
	return New("CNV_004", fmt.Sprintf("No exchange rate for %s", pair), http.StatusBadRequest)
}

// ---- Request (PAY) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrBodyTooLarge() *AppError {
	return New("PAY_005", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Too many requests", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
