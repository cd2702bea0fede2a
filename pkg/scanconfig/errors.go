package scanconfig

import (
	"errors"
	"fmt"
)

// ConfigFormatError means the stored document is not {"skip": [string, ...]}.
type ConfigFormatError struct {
	Err error
}

func (e *ConfigFormatError) Error() string {
	return fmt.Sprintf("invalid security scan config: %v", e.Err)
}

func (e *ConfigFormatError) Unwrap() error {
	return e.Err
}

// UnavailableError means the config map collection could not be loaded, as
// opposed to loading fine without the record.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("config maps unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed create or save against the remote API.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s security scan config: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsConfigFormatError(err error) bool {
	var target *ConfigFormatError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}

func IsPersistenceError(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
