// Package client talks to the authkeeper HTTP API.
//
// HTTPClient implements register, login, profile and ping against the
// server. Failures come back as *Error, which wraps the matching sentinel
// from package common so callers can use errors.Is. Timeouts and connection
// failures wrap common.ErrStorageUnavailable.
package client
