package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
)

var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrDisconnected = errors.New("session is disconnected")
)

// AccessDeniedError is returned when the week before RequiredWeek+1 is not completed yet.
// It matches progress.ErrAccessDenied with errors.Is.
type AccessDeniedError struct {
	RequiredWeek int
	Message      string
}

func (err *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s (week %d)", err.Message, err.RequiredWeek)
}

func (err *AccessDeniedError) Is(target error) bool {
	return target == progress.ErrAccessDenied
}

// ValidationError is a rejected request. Fields maps the offending fields to their errors;
// it is empty when the server only sent a message.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (err *ValidationError) Error() string {
	if len(err.Fields) == 0 {
		return err.Message
	}
	msgs := make([]string, 0, len(err.Fields))
	for fld, msg := range err.Fields {
		msgs = append(msgs, fld+": "+msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// NetworkError is returned once every attempt of a request failed at the transport level or with a 5xx.
type NetworkError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (err *NetworkError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", err.Method, err.URL, err.Attempts, err.Err)
}

func (err *NetworkError) Unwrap() error { return err.Err }

func IsNetworkError(err error) bool {
	var nErr *NetworkError
	return errors.As(err, &nErr)
}
