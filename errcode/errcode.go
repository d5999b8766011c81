package errcode

import (
	"errors"

	"espstorage-go/drivers/espflash"
)

// Code is a stable, user-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidParams  Code = "invalid_params"
	UnknownCommand Code = "unknown_command"
	Unsupported    Code = "unsupported"

	// Flash driver
	IoError       Code = "io_error"
	IoTimeout     Code = "io_timeout"
	CantUnlock    Code = "cant_unlock"
	NotAligned    Code = "not_aligned"
	OutOfBounds   Code = "out_of_bounds"
	FirmwareError Code = "firmware_error"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error. Driver errors are mapped through
// MapDriverErr; anything else defaults to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return MapDriverErr(err)
}

// MapDriverErr maps espflash errors (possibly wrapped) to a Code.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	var fe *espflash.Error
	if !errors.As(err, &fe) {
		return Error
	}
	switch fe.Kind {
	case espflash.KindIoError:
		return IoError
	case espflash.KindIoTimeout:
		return IoTimeout
	case espflash.KindCantUnlock:
		return CantUnlock
	case espflash.KindNotAligned:
		return NotAligned
	case espflash.KindOutOfBounds:
		return OutOfBounds
	case espflash.KindOther:
		return FirmwareError
	default:
		return Error
	}
}
