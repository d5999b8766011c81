// Package espflash provides checked access to raw on-chip flash through a
// small set of firmware routines (see ROM).
//
// Every read and write is bounds checked against the detected capacity and
// then word-alignment checked before the firmware is called. Writes and
// erases unlock the flash once, on first use. There is no implicit erase:
// flash bits can only be cleared by Write, so callers erase sectors
// themselves when they need to set bits.
//
// A FlashStorage is not safe for concurrent use. It assumes its caller owns
// the flash for the duration of each call.
package espflash

import "sync"

// FlashStorage is the driver state for the single flash device of a system.
type FlashStorage struct {
	rom      ROM
	capacity uint32
	unlocked bool
}

// New binds the driver to rom and detects the flash capacity from the
// identification bytes at IDAddress. New never fails: if the identification
// read fails or the density code is unknown, capacity is 0 and every later
// non-empty read or write reports ErrOutOfBounds.
func New(rom ROM) *FlashStorage {
	fs := &FlashStorage{rom: rom}

	var id [idLength]byte
	if err := fs.internalRead(IDAddress, MaybeUninit(id[:])); err != nil {
		return fs
	}
	fs.capacity = DensityMiB(id[idDensityByte]) * mib
	return fs
}

// DensityMiB maps an identification byte to a capacity in MiB, or 0 when
// its density code is not recognised.
func DensityMiB(id byte) uint32 {
	switch id & idDensityMask {
	case 0x00:
		return 1
	case 0x10:
		return 2
	case 0x20:
		return 4
	case 0x30:
		return 8
	case 0x40:
		return 16
	default:
		return 0
	}
}

var shared struct {
	once sync.Once
	fs   *FlashStorage
}

// Shared returns the process-wide FlashStorage, creating it from rom on the
// first call. Later calls return the same instance and ignore rom.
func Shared(rom ROM) *FlashStorage {
	shared.once.Do(func() { shared.fs = New(rom) })
	return shared.fs
}

// Capacity returns the detected flash size in bytes.
func (fs *FlashStorage) Capacity() uint32 { return fs.capacity }

// SectorCount returns the number of whole sectors in the detected capacity.
func (fs *FlashStorage) SectorCount() uint32 { return fs.capacity / SectorSize }

// Unlocked reports whether the flash has been unlocked for mutation.
func (fs *FlashStorage) Unlocked() bool { return fs.unlocked }

// ReadUninit fills dst from flash starting at offset. offset and len(dst)
// must be multiples of WordSize and the range must lie within capacity.
func (fs *FlashStorage) ReadUninit(offset uint32, dst MaybeUninit) error {
	if err := fs.validate(offset, len(dst)); err != nil {
		return err
	}
	return fs.internalRead(offset, dst)
}

// Read is ReadUninit for an already initialised buffer.
func (fs *FlashStorage) Read(offset uint32, dst []byte) error {
	return fs.ReadUninit(offset, MaybeUninit(dst))
}

// Write programs src at offset. It does not erase first. offset and len(src)
// must be multiples of WordSize and the range must lie within capacity.
func (fs *FlashStorage) Write(offset uint32, src []byte) error {
	if err := fs.validate(offset, len(src)); err != nil {
		return err
	}
	if err := fs.unlockOnce(); err != nil {
		return err
	}
	return checkRC(fs.rom.Write(offset, src))
}

// EraseSector erases sector index sector (offset sector*SectorSize). The
// index is not checked against capacity.
func (fs *FlashStorage) EraseSector(sector uint32) error {
	if err := fs.unlockOnce(); err != nil {
		return err
	}
	return checkRC(fs.rom.EraseSector(sector))
}

func (fs *FlashStorage) internalRead(offset uint32, dst MaybeUninit) error {
	return checkRC(fs.rom.Read(offset, dst))
}

// unlockOnce calls the firmware unlock routine until it first succeeds.
func (fs *FlashStorage) unlockOnce() error {
	if fs.unlocked {
		return nil
	}
	if fs.rom.Unlock() != 0 {
		return ErrCantUnlock
	}
	fs.unlocked = true
	return nil
}
