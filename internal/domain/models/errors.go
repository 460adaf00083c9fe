package models

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced by the order and catalog services.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindValidation            Kind = "validation_error"
	KindInvalidProduct        Kind = "invalid_product"
	KindInsufficientInventory Kind = "insufficient_inventory"
	KindConflict              Kind = "conflict"
	KindForbidden             Kind = "forbidden"
	KindUnavailable           Kind = "unavailable"
	KindInternal              Kind = "internal"
)

// Error is a structured failure carrying a kind and a human-readable message.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an *Error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrValidation            = &Error{Kind: KindValidation}
	ErrInvalidProduct        = &Error{Kind: KindInvalidProduct}
	ErrInsufficientInventory = &Error{Kind: KindInsufficientInventory}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrUnavailable           = &Error{Kind: KindUnavailable}
)

// KindOf reports the kind of err, or KindInternal for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
