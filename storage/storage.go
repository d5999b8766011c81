// Package storage gives byte-addressed access to flash on top of espflash.
//
// Reads may start and end anywhere; they are staged through a word-aligned
// sector buffer. Writes are read-modify-write per sector: the sector is read
// into the buffer, merged, and only erased when the new data needs a bit set
// that is currently clear.
package storage

import (
	"bytes"
	"errors"

	"espstorage-go/drivers/espflash"
	"espstorage-go/x/mathx"
)

var ErrNegativeOffset = errors.New("storage: negative offset")

// Storage is not safe for concurrent use.
type Storage struct {
	fs  *espflash.FlashStorage
	buf espflash.SectorBuffer
}

// New wraps fs. The Storage owns a sector buffer; fs must not be used
// concurrently with it.
func New(fs *espflash.FlashStorage) *Storage {
	return &Storage{fs: fs, buf: espflash.UninitSectorBuffer()}
}

// Size returns the flash capacity in bytes.
func (s *Storage) Size() int64 { return int64(s.fs.Capacity()) }

// SectorSize returns the erase granularity.
func (s *Storage) SectorSize() int64 { return espflash.SectorSize }

// Flash returns the underlying driver.
func (s *Storage) Flash() *espflash.FlashStorage { return s.fs }

func (s *Storage) checkRange(off int64, n int) error {
	if off < 0 {
		return ErrNegativeOffset
	}
	if off > s.Size() || int64(n) > s.Size()-off {
		return espflash.ErrOutOfBounds
	}
	return nil
}

// ReadAt implements io.ReaderAt. The whole range must lie within the flash.
func (s *Storage) ReadAt(p []byte, off int64) (int, error) {
	if err := s.checkRange(off, len(p)); err != nil {
		return 0, err
	}
	end := off + int64(len(p))
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		base := mathx.AlignDown(pos, espflash.WordSize)
		span := mathx.Min(mathx.AlignUp(end, espflash.WordSize)-base, espflash.SectorSize)
		view := s.buf.Uninit()[:span]
		if err := s.fs.ReadUninit(uint32(base), view); err != nil {
			return n, err
		}
		n += copy(p[n:], view[pos-base:])
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Sectors whose contents would not change
// are left untouched. When the new data only clears bits, just the changed
// words are programmed; otherwise the sector is erased and rewritten whole.
func (s *Storage) WriteAt(p []byte, off int64) (int, error) {
	if err := s.checkRange(off, len(p)); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		sector := uint32(pos / espflash.SectorSize)
		base := int64(sector) * espflash.SectorSize
		within := int(pos - base)
		m := mathx.Min(len(p)-n, espflash.SectorSize-within)

		if err := s.fs.ReadUninit(uint32(base), s.buf.Uninit()); err != nil {
			return n, err
		}
		// Full-sector read above initialised every byte.
		data := s.buf.AssumeInit()
		old, src := data[within:within+m], p[n:n+m]
		if bytes.Equal(old, src) {
			n += m
			continue
		}
		if !needsErase(old, src) {
			// Program only the words that change; the rest keep their cells.
			first, last := diffSpan(old, src)
			lo := mathx.AlignDown(within+first, espflash.WordSize)
			hi := mathx.AlignUp(within+last+1, espflash.WordSize)
			copy(old, src)
			if err := s.fs.Write(uint32(base)+uint32(lo), data[lo:hi]); err != nil {
				return n, err
			}
			n += m
			continue
		}
		copy(old, src)
		if err := s.fs.EraseSector(sector); err != nil {
			return n, err
		}
		if err := s.fs.Write(uint32(base), data[:]); err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

// Erase erases [off, off+n). Both must be multiples of the sector size.
func (s *Storage) Erase(off, n int64) error {
	if off < 0 || n < 0 {
		return ErrNegativeOffset
	}
	if off%espflash.SectorSize != 0 || n%espflash.SectorSize != 0 {
		return espflash.ErrNotAligned
	}
	if off > s.Size() || n > s.Size()-off {
		return espflash.ErrOutOfBounds
	}
	for a := off; a < off+n; a += espflash.SectorSize {
		if err := s.fs.EraseSector(uint32(a / espflash.SectorSize)); err != nil {
			return err
		}
	}
	return nil
}

// needsErase reports whether programming src over old would have to set a
// bit that is clear. Programming can only clear bits.
func needsErase(old, src []byte) bool {
	for i := range src {
		if old[i]&src[i] != src[i] {
			return true
		}
	}
	return false
}

// diffSpan returns the first and last index where a and b differ. a and b
// must differ somewhere.
func diffSpan(a, b []byte) (first, last int) {
	first, last = -1, -1
	for i := range b {
		if a[i] != b[i] {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}
