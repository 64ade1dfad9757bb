package mangabuff

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentialsFormat = errors.New("mangabuff: email must be a valid address and password must not be blank")
	ErrInvalidRank              = errors.New("mangabuff: unknown card rank")
	ErrEmptyRequest             = errors.New("mangabuff: a query needs search text or the want flag, the bare market page cannot be crawled")

	ErrNotAuthorized = errors.New("mangabuff: login rejected, check the email and password")

	ErrCsrfTokenMissing = errors.New("mangabuff: csrf token not found on the login page")
	ErrAccountIdMissing = errors.New("mangabuff: account id not found on the landing page")
)

// StatusError is returned when the site answers with an unexpected HTTP status.
type StatusError struct {
	Method     string
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mangabuff: %s %s: unexpected status %d", e.Method, e.Url, e.StatusCode)
}

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInputValidation
	KindNotAuthorized
	// KindProtocol means a page did not have the structure the client relies on,
	// usually because the site changed.
	KindProtocol
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInputValidation:
		return "input_validation"
	case KindNotAuthorized:
		return "not_authorized"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// KindOf classifies an error returned by this package. Errors that are not one of
// the package's sentinels (network failures, unexpected statuses) are transport errors.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidCredentialsFormat),
		errors.Is(err, ErrInvalidRank),
		errors.Is(err, ErrEmptyRequest):
		return KindInputValidation
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrCsrfTokenMissing),
		errors.Is(err, ErrAccountIdMissing):
		return KindProtocol
	}
	return KindTransport
}
