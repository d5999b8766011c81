package espflash

import "unsafe"

// MaybeUninit is a byte region whose contents may not have been written.
// FlashStorage treats it as an output only: it is never read before the
// firmware has filled it.
type MaybeUninit []byte

// SectorBuffer is a sector-sized staging area. Its backing store is an
// array of words, so it is always 4-byte aligned and can be handed to the
// firmware directly.
//
// The contents of a new or reused buffer are unspecified. Fill it with a
// full-sector ReadUninit before calling AssumeInit.
type SectorBuffer struct {
	words [SectorSize / WordSize]uint32
}

// UninitSectorBuffer returns a buffer with unspecified contents.
func UninitSectorBuffer() SectorBuffer { return SectorBuffer{} }

// Uninit returns a view of the whole buffer suitable for ReadUninit. It may
// be sliced.
func (b *SectorBuffer) Uninit() MaybeUninit { return MaybeUninit(b.array()[:]) }

// AssumeInit reinterprets the buffer as initialised bytes.
//
// This is unchecked. The caller guarantees that every byte has been written,
// normally by a successful ReadUninit of the full sector. Reading bytes that
// were not written yields whatever the buffer last held.
func (b *SectorBuffer) AssumeInit() *[SectorSize]byte { return b.array() }

func (b *SectorBuffer) array() *[SectorSize]byte {
	return (*[SectorSize]byte)(unsafe.Pointer(&b.words))
}
