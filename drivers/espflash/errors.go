package espflash

import "strconv"

// Kind classifies a FlashStorage failure. The set is open: new firmware
// status codes may gain their own kind later.
type Kind uint8

const (
	KindIoError Kind = iota + 1
	KindIoTimeout
	KindCantUnlock
	KindNotAligned
	KindOutOfBounds
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindIoError:
		return "io error"
	case KindIoTimeout:
		return "io timeout"
	case KindCantUnlock:
		return "cannot unlock flash"
	case KindNotAligned:
		return "not word aligned"
	case KindOutOfBounds:
		return "out of bounds"
	case KindOther:
		return "firmware error"
	default:
		return "unknown"
	}
}

// Error is returned by every failing FlashStorage operation. Code holds the
// raw firmware status for KindOther and is zero otherwise.
type Error struct {
	Kind Kind
	Code int32
}

func (e *Error) Error() string {
	if e.Kind == KindOther {
		return "espflash: firmware status " + strconv.FormatInt(int64(e.Code), 10)
	}
	return "espflash: " + e.Kind.String()
}

// Is matches on Kind. A KindOther target with Code 0 matches any firmware
// status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return e.Kind != KindOther || t.Code == 0 || t.Code == e.Code
}

var (
	ErrIoError     = &Error{Kind: KindIoError}
	ErrIoTimeout   = &Error{Kind: KindIoTimeout}
	ErrCantUnlock  = &Error{Kind: KindCantUnlock}
	ErrNotAligned  = &Error{Kind: KindNotAligned}
	ErrOutOfBounds = &Error{Kind: KindOutOfBounds}
	// ErrOther matches any unrecognised firmware status via errors.Is.
	ErrOther = &Error{Kind: KindOther}
)

// Other wraps an unrecognised firmware status code.
func Other(code int32) error { return &Error{Kind: KindOther, Code: code} }

// checkRC translates a firmware status code.
func checkRC(rc int32) error {
	switch rc {
	case 0:
		return nil
	case 1:
		return ErrIoError
	case 2:
		return ErrIoTimeout
	default:
		return Other(rc)
	}
}
