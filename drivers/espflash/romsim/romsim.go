// Package romsim is an in-memory NOR flash that implements espflash.ROM.
//
// Memory starts erased (0xFF) except for the identification header, whose
// density byte encodes the configured size. Writes only clear bits, erases
// set a whole sector back to 0xFF, and neither is accepted until Unlock has
// succeeded. Status codes follow the firmware convention: 0 ok, 1 I/O error.
package romsim

import (
	"sync"

	"espstorage-go/drivers/espflash"
)

const (
	statusOK    int32 = 0
	statusIOErr int32 = 1

	densityByte    = 3
	invalidDensity = 0xF0
)

// Config selects the simulated part. Zero values take defaults.
type Config struct {
	// SizeMiB is one of 1, 2, 4, 8, 16. Default 4.
	SizeMiB uint32
	// IDAddress is where the identification header is placed.
	// Default espflash.IDAddress.
	IDAddress uint32
}

// Op names a firmware routine for fault injection.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
	OpErase
	OpUnlock
	numOps
)

// Calls counts invocations per routine. WriteBytes totals the bytes passed
// to accepted writes.
type Calls struct {
	Read, Write, Erase, Unlock int
	WriteBytes                 int
}

type fault struct {
	rc    int32
	count int // <0: forever
}

// ROM is the simulated device. It is safe for concurrent use.
type ROM struct {
	mu       sync.Mutex
	mem      []byte
	idAddr   uint32
	unlocked bool
	calls    Calls
	faults   [numOps]fault
}

// New returns an erased simulated part of the configured size.
func New(cfg Config) *ROM {
	if cfg.SizeMiB == 0 {
		cfg.SizeMiB = 4
	}
	if cfg.IDAddress == 0 {
		cfg.IDAddress = espflash.IDAddress
	}
	r := &ROM{
		mem:    make([]byte, cfg.SizeMiB*1024*1024),
		idAddr: cfg.IDAddress,
	}
	for i := range r.mem {
		r.mem[i] = 0xFF
	}
	r.SetIDByte(densityCode(cfg.SizeMiB))
	return r
}

// SupportedSize reports whether sizeMiB is a size the identification header
// can encode.
func SupportedSize(sizeMiB uint32) bool { return densityCode(sizeMiB) != invalidDensity }

// densityCode is the inverse of espflash.DensityMiB. Unknown sizes get an
// invalid code so detection yields zero capacity.
func densityCode(sizeMiB uint32) byte {
	switch sizeMiB {
	case 1:
		return 0x00
	case 2:
		return 0x10
	case 4:
		return 0x20
	case 8:
		return 0x30
	case 16:
		return 0x40
	default:
		return invalidDensity
	}
}

// SetIDByte overwrites the density byte of the identification header.
func (r *ROM) SetIDByte(b byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := int(r.idAddr) + densityByte; i < len(r.mem) {
		r.mem[i] = b
	}
}

// Fail makes the next count calls of op return rc. count < 0 fails forever;
// count == 0 clears the fault.
func (r *ROM) Fail(op Op, rc int32, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[op] = fault{rc: rc, count: count}
}

// Calls returns a snapshot of the call counters.
func (r *ROM) Calls() Calls {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Size returns the simulated memory size in bytes.
func (r *ROM) Size() int { return len(r.mem) }

// Bytes returns a copy of [off, off+n), or nil if the range is not inside
// the simulated memory.
func (r *ROM) Bytes(off, n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if off < 0 || n < 0 || off > len(r.mem)-n {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.mem[off:off+n])
	return out
}

// injected returns the forced status for op, consuming one use. Caller
// holds mu.
func (r *ROM) injected(op Op) (int32, bool) {
	f := &r.faults[op]
	if f.count == 0 {
		return 0, false
	}
	if f.count > 0 {
		f.count--
	}
	return f.rc, true
}

func (r *ROM) inRange(offset uint32, n int) bool {
	return uint64(offset)+uint64(n) <= uint64(len(r.mem))
}

// Read copies memory into dst. Out-of-range reads fail with status 1.
func (r *ROM) Read(offset uint32, dst []byte) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Read++
	if rc, ok := r.injected(OpRead); ok {
		return rc
	}
	if !r.inRange(offset, len(dst)) {
		return statusIOErr
	}
	copy(dst, r.mem[offset:])
	return statusOK
}

// Write ANDs src into memory. It fails with status 1 while locked or out
// of range.
func (r *ROM) Write(offset uint32, src []byte) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Write++
	if rc, ok := r.injected(OpWrite); ok {
		return rc
	}
	if !r.unlocked || !r.inRange(offset, len(src)) {
		return statusIOErr
	}
	for i, b := range src {
		r.mem[int(offset)+i] &= b
	}
	r.calls.WriteBytes += len(src)
	return statusOK
}

// EraseSector sets the sector to 0xFF. It fails with status 1 while locked
// or out of range.
func (r *ROM) EraseSector(sector uint32) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Erase++
	if rc, ok := r.injected(OpErase); ok {
		return rc
	}
	off := uint64(sector) * espflash.SectorSize
	if !r.unlocked || off+espflash.SectorSize > uint64(len(r.mem)) {
		return statusIOErr
	}
	s := r.mem[off : off+espflash.SectorSize]
	for i := range s {
		s[i] = 0xFF
	}
	return statusOK
}

// Unlock enables writes and erases.
func (r *ROM) Unlock() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Unlock++
	if rc, ok := r.injected(OpUnlock); ok {
		return rc
	}
	r.unlocked = true
	return statusOK
}
