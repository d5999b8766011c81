package espflash

import (
	"errors"
	"testing"
)

func TestDensityMiB(t *testing.T) {
	cases := []struct {
		id   byte
		want uint32
	}{
		{0x00, 1}, {0x0F, 1},
		{0x10, 2}, {0x12, 2},
		{0x20, 4}, {0x2F, 4},
		{0x30, 8},
		{0x40, 16},
		{0x50, 0}, {0x80, 0}, {0xF0, 0}, {0xFF, 0},
	}
	for _, c := range cases {
		if got := DensityMiB(c.id); got != c.want {
			t.Fatalf("DensityMiB(%#02x)=%d want %d", c.id, got, c.want)
		}
	}
}

func TestNewDetectsCapacity(t *testing.T) {
	rom := &fakeROM{idByte: 0x20}
	fs := New(rom)
	if fs.Capacity() != 4*1024*1024 {
		t.Fatalf("capacity=%d want %d", fs.Capacity(), 4*1024*1024)
	}
	if fs.SectorCount() != 1024 {
		t.Fatalf("sectors=%d want 1024", fs.SectorCount())
	}
	if rom.reads != 1 || rom.lastOffset != IDAddress || rom.lastLen != idLength {
		t.Fatalf("identification read: n=%d off=%#x len=%d", rom.reads, rom.lastOffset, rom.lastLen)
	}
	if fs.Unlocked() || rom.unlocks != 0 {
		t.Fatal("construction must not unlock")
	}
}

func TestNewInvalidDensityGivesZero(t *testing.T) {
	fs := New(&fakeROM{idByte: 0xF0})
	if fs.Capacity() != 0 {
		t.Fatalf("capacity=%d want 0", fs.Capacity())
	}
}

func TestNewReadFailureGivesZero(t *testing.T) {
	fs := New(&fakeROM{idByte: 0x40, readRC: 1})
	if fs.Capacity() != 0 {
		t.Fatalf("capacity=%d want 0", fs.Capacity())
	}
	if err := fs.Read(0, make([]byte, 4)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("read on zero capacity: %v", err)
	}
}

func TestReadTranslatesStatus(t *testing.T) {
	cases := []struct {
		rc   int32
		want error
	}{
		{0, nil},
		{1, ErrIoError},
		{2, ErrIoTimeout},
		{3, Other(3)},
		{-1, Other(-1)},
	}
	for _, c := range cases {
		rom := &fakeROM{}
		fs := withCapacity(rom, mib)
		rom.readRC = c.rc
		err := fs.Read(0, make([]byte, 8))
		if c.want == nil {
			if err != nil {
				t.Fatalf("rc=%d: unexpected %v", c.rc, err)
			}
			continue
		}
		if !errors.Is(err, c.want) {
			t.Fatalf("rc=%d: got %v want %v", c.rc, err, c.want)
		}
	}
}

func TestReadFillsBuffer(t *testing.T) {
	rom := &fakeROM{}
	fs := withCapacity(rom, mib)
	buf := make([]byte, 16)
	if err := fs.Read(64, buf); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0xA5 {
			t.Fatalf("buf[%d]=%#x", i, b)
		}
	}
	if rom.lastOffset != 64 || rom.lastLen != 16 {
		t.Fatalf("firmware saw off=%d len=%d", rom.lastOffset, rom.lastLen)
	}
}

func TestReadNeverUnlocks(t *testing.T) {
	rom := &fakeROM{}
	fs := withCapacity(rom, mib)
	for i := 0; i < 3; i++ {
		if err := fs.Read(0, make([]byte, 4)); err != nil {
			t.Fatal(err)
		}
	}
	if rom.unlocks != 0 || fs.Unlocked() {
		t.Fatalf("reads triggered unlock: %d", rom.unlocks)
	}
}

func TestWriteUnlocksOnce(t *testing.T) {
	rom := &fakeROM{}
	fs := withCapacity(rom, mib)
	src := []byte{1, 2, 3, 4}
	const n = 5
	for i := 0; i < n; i++ {
		if err := fs.Write(0, src); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if rom.writes != n {
		t.Fatalf("writes=%d want %d", rom.writes, n)
	}
	if rom.unlocks != 1 {
		t.Fatalf("unlocks=%d want 1", rom.unlocks)
	}
	if err := fs.EraseSector(0); err != nil {
		t.Fatal(err)
	}
	if rom.unlocks != 1 {
		t.Fatalf("erase re-unlocked: %d", rom.unlocks)
	}
}

func TestUnlockFailureRetries(t *testing.T) {
	rom := &fakeROM{unlockRCs: []int32{1}}
	fs := withCapacity(rom, mib)

	if err := fs.Write(0, make([]byte, 4)); !errors.Is(err, ErrCantUnlock) {
		t.Fatalf("first write: got %v want ErrCantUnlock", err)
	}
	if fs.Unlocked() {
		t.Fatal("unlocked after failed unlock")
	}
	if rom.writes != 0 {
		t.Fatal("firmware write ran while locked")
	}

	if err := fs.Write(0, make([]byte, 4)); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if rom.unlocks != 2 {
		t.Fatalf("unlocks=%d want 2", rom.unlocks)
	}
	if !fs.Unlocked() || rom.writes != 1 {
		t.Fatalf("unlocked=%v writes=%d", fs.Unlocked(), rom.writes)
	}
}

func TestEraseUnlockFailure(t *testing.T) {
	rom := &fakeROM{unlockRCs: []int32{7}}
	fs := withCapacity(rom, mib)
	if err := fs.EraseSector(3); !errors.Is(err, ErrCantUnlock) {
		t.Fatalf("got %v", err)
	}
	if rom.erases != 0 {
		t.Fatal("firmware erase ran while locked")
	}
}

func TestEraseSectorIsNotBoundsChecked(t *testing.T) {
	rom := &fakeROM{}
	fs := withCapacity(rom, mib)
	if err := fs.EraseSector(100000); err != nil {
		t.Fatal(err)
	}
	if rom.erases != 1 || rom.lastSector != 100000 {
		t.Fatalf("erases=%d sector=%d", rom.erases, rom.lastSector)
	}
	rom.eraseRC = 2
	if err := fs.EraseSector(1); !errors.Is(err, ErrIoTimeout) {
		t.Fatalf("got %v", err)
	}
}

func TestWriteScenario1MiB(t *testing.T) {
	rom := &fakeROM{}
	fs := withCapacity(rom, 1_048_576)
	var word [4]byte

	if err := fs.Write(0, word[:]); err != nil {
		t.Fatalf("write(0): %v", err)
	}

	rom = &fakeROM{}
	fs = withCapacity(rom, 1_048_576)
	if err := fs.Write(1, word[:]); !errors.Is(err, ErrNotAligned) {
		t.Fatalf("write(1): got %v want ErrNotAligned", err)
	}
	if rom.unlocks != 0 || rom.writes != 0 {
		t.Fatalf("validation failure reached firmware: unlocks=%d writes=%d", rom.unlocks, rom.writes)
	}

	if err := fs.Write(1_048_573, word[:]); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("write(1048573): got %v want ErrOutOfBounds", err)
	}
	if rom.unlocks != 0 || rom.writes != 0 {
		t.Fatal("out of bounds write reached firmware")
	}

	rom.writeRC = 9
	if err := fs.Write(4, word[:]); !errors.Is(err, Other(9)) {
		t.Fatalf("got %v want Other(9)", err)
	}
}

func TestShared(t *testing.T) {
	a := Shared(&fakeROM{idByte: 0x10})
	b := Shared(&fakeROM{idByte: 0x40})
	if a != b {
		t.Fatal("Shared returned different instances")
	}
	if a.Capacity() != 2*mib {
		t.Fatalf("capacity=%d want %d", a.Capacity(), 2*mib)
	}
}
