package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Error describes a failed API call.
type Error struct {
	// Op is the operation, e.g. "register".
	Op   string
	Kind common.Kind
	// Status is the HTTP status, zero when no response arrived.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op string, status int, err error) *Error {
	return &Error{Op: op, Kind: common.KindOf(err), Status: status, Err: err}
}

// errorForStatus picks the sentinel for an API error response. The body
// message is preferred; the status decides when the message is unknown.
func errorForStatus(status int, message string) error {
	if err, ok := common.FromMessage(message); ok {
		return err
	}

	switch {
	case status == http.StatusUnauthorized:
		return common.ErrInvalidCredentials
	case status == http.StatusForbidden:
		return common.ErrInvalidToken
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusBadRequest:
		return common.ErrMissingFields
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return common.ErrStorageUnavailable
	default:
		return errors.Join(common.ErrorInternal, fmt.Errorf("unexpected status %d: %s", status, message))
	}
}
