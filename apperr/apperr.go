package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	InvalidCredentials   Kind = "invalid_credentials"
	NoPasswordConfigured Kind = "no_password_configured"
	AssetNotFound        Kind = "asset_not_found"
	InsufficientQuantity Kind = "insufficient_quantity"
	LoanNotFound         Kind = "loan_not_found"
	ReturnConflict       Kind = "return_conflict"
	StoreError           Kind = "store_error"
	NotFound             Kind = "not_found"
	ReferenceConflict    Kind = "reference_conflict"
	Validation           Kind = "validation"
	RateLimited          Kind = "rate_limited"
	Unauthorized         Kind = "unauthorized"
	Forbidden            Kind = "forbidden"
)

var defaultMessages = map[Kind]string{
	InvalidCredentials:   "invalid credentials",
	NoPasswordConfigured: "user has no password configured, contact the administrator",
	AssetNotFound:        "asset not found",
	InsufficientQuantity: "requested quantity exceeds available quantity",
	LoanNotFound:         "loan not found",
	ReturnConflict:       "loan already returned",
	StoreError:           "store error",
	NotFound:             "not found",
	ReferenceConflict:    "record is still referenced",
	Validation:           "invalid input",
	RateLimited:          "too many attempts, try again later",
	Unauthorized:         "unauthorized",
	Forbidden:            "forbidden",
}

// Error carries a Kind so callers can branch with errors.Is regardless of the message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = defaultMessages[e.Kind]
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials   = &Error{Kind: InvalidCredentials}
	ErrNoPasswordConfigured = &Error{Kind: NoPasswordConfigured}
	ErrAssetNotFound        = &Error{Kind: AssetNotFound}
	ErrInsufficientQuantity = &Error{Kind: InsufficientQuantity}
	ErrLoanNotFound         = &Error{Kind: LoanNotFound}
	ErrReturnConflict       = &Error{Kind: ReturnConflict}
	ErrStore                = &Error{Kind: StoreError}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrReferenceConflict    = &Error{Kind: ReferenceConflict}
	ErrValidation           = &Error{Kind: Validation}
	ErrRateLimited          = &Error{Kind: RateLimited}
	ErrUnauthorized         = &Error{Kind: Unauthorized}
	ErrForbidden            = &Error{Kind: Forbidden}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Store wraps a store failure. Errors that already carry a Kind pass through unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: StoreError, Message: op, Err: err}
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return StoreError
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidCredentials, Unauthorized:
		return http.StatusUnauthorized
	case NoPasswordConfigured, Forbidden:
		return http.StatusForbidden
	case AssetNotFound, LoanNotFound, NotFound:
		return http.StatusNotFound
	case InsufficientQuantity, ReturnConflict, ReferenceConflict:
		return http.StatusConflict
	case Validation:
		return http.StatusBadRequest
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
