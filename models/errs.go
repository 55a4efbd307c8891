package models

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
)

// NewNotFound wraps ErrNotFound with a caller-facing message
func NewNotFound(msg string) error {
	return errors.Wrap(ErrNotFound, msg)
}

func NewInvalidArgument(msg string) error {
	return errors.Wrap(ErrInvalidArgument, msg)
}

func NewConflict(msg string) error {
	return errors.Wrap(ErrConflict, msg)
}

func NewForbidden(msg string) error {
	return errors.Wrap(ErrForbidden, msg)
}

// HumanMessage returns the message without the taxonomy suffix
func HumanMessage(err error) string {
	for _, base := range []error{ErrNotFound, ErrInvalidArgument, ErrConflict, ErrForbidden} {
		if errors.Is(err, base) {
			return strings.TrimSuffix(err.Error(), ": "+base.Error())
		}
	}
	return err.Error()
}
