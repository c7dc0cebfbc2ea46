package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the webhook token or payload
	// signature does not match the binding configuration.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedVendor is returned when the vendor exists in the
	// catalog but no parser is registered for it. This is a deployment
	// inconsistency and fails the request rather than skipping silently.
	ErrUnsupportedVendor = errors.New("unsupported vendor")
)

// NotFoundKind identifies which routing entity was missing. Vendors rely on
// the precise 404 message for their retry and alerting logic.
type NotFoundKind string

const (
	NotFoundProject NotFoundKind = "project"
	NotFoundVendor  NotFoundKind = "vendor"
	NotFoundChannel NotFoundKind = "channel"
	NotFoundBinding NotFoundKind = "configuration"
)

type NotFoundError struct {
	Kind NotFoundKind
	Key  string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("no %s found", e.Kind)
	}
	return fmt.Sprintf("no %s found for %q", e.Kind, e.Key)
}

func NewNotFound(kind NotFoundKind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// IsNotFound reports whether err is a routing NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
