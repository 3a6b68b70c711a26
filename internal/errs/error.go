package errs

import (
	"errors"
)

var (
	ErrUnauthorized         = errors.New("operation is not permitted")
	ErrNotFound             = errors.New("not found")
	ErrInvalidTransition    = errors.New("invalid borrowing state transition")
	ErrNoCopiesAvailable    = errors.New("no copies available")
	ErrRenewalLimitReached  = errors.New("renewal limit reached")
	ErrDuplicateReservation = errors.New("active reservation already exists")
	ErrAlreadyBorrowed      = errors.New("open borrowing record already exists")
	ErrBookReferenced       = errors.New("book is referenced by circulation history")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
