package errcode

import (
	"errors"
	"fmt"
	"testing"

	"espstorage-go/drivers/espflash"
)

func TestMapDriverErr(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{espflash.ErrIoError, IoError},
		{espflash.ErrIoTimeout, IoTimeout},
		{espflash.ErrCantUnlock, CantUnlock},
		{espflash.ErrNotAligned, NotAligned},
		{espflash.ErrOutOfBounds, OutOfBounds},
		{espflash.Other(42), FirmwareError},
		{fmt.Errorf("flash write at 4: %w", espflash.ErrIoError), IoError},
		{errors.New("something else"), Error},
	}
	for _, c := range cases {
		if got := MapDriverErr(c.err); got != c.want {
			t.Fatalf("MapDriverErr(%v)=%q want %q", c.err, got, c.want)
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should be ok")
	}
	if Of(InvalidParams) != InvalidParams {
		t.Fatal("bare code")
	}
	e := &E{C: UnknownCommand, Op: "console", Msg: "frob"}
	if Of(e) != UnknownCommand {
		t.Fatal("wrapped code")
	}
	if e.Error() != "unknown_command: frob" {
		t.Fatalf("E.Error()=%q", e.Error())
	}
	if Of(espflash.ErrOutOfBounds) != OutOfBounds {
		t.Fatal("driver error")
	}
	cause := errors.New("boom")
	if !errors.Is(&E{C: Error, Err: cause}, cause) {
		t.Fatal("Unwrap")
	}
}
