package rrule

import (
	"errors"
	"fmt"
)

// Error classes returned while building a Rule. Use errors.Is to test for
// them; occurrence generation itself never fails.
var (
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrUnknownFrequency         = errors.New("unknown frequency")
	ErrUnsupportedAttribute     = errors.New("attribute not supported for frequency")
	ErrInvalidValue             = errors.New("invalid value")
	ErrInvalidRule              = errors.New("invalid rule")
)

// AttributeError carries the attribute a parse or validation failure refers
// to. It unwraps to one of the error classes above.
type AttributeError struct {
	Attribute string
	Reason    string
	Err       error
}

func (e *AttributeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Attribute, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Attribute, e.Err, e.Reason)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

func invalidValue(attr, format string, args ...any) error {
	return &AttributeError{Attribute: attr, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}

func unsupported(attr string, kind Kind) error {
	return &AttributeError{Attribute: attr, Reason: "not allowed with FREQ=" + kind.String(), Err: ErrUnsupportedAttribute}
}

func missing(attr string) error {
	return &AttributeError{Attribute: attr, Err: ErrMissingRequiredAttribute}
}
