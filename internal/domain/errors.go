package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage = errors.New("booking message is empty")
	ErrNotFound     = errors.New("not found")
)

// UpstreamError marks a failed call to the LLM or maps provider.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Err: err}
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
