package espflash

// checkBounds rejects any [offset, offset+length) not inside [0, capacity).
// The length comparison runs first so capacity-length cannot underflow.
func (fs *FlashStorage) checkBounds(offset uint32, length int) error {
	if uint64(length) > uint64(fs.capacity) || offset > fs.capacity-uint32(length) {
		return ErrOutOfBounds
	}
	return nil
}

func checkAlignment(offset uint32, length int) error {
	if offset%WordSize != 0 || length%WordSize != 0 {
		return ErrNotAligned
	}
	return nil
}

// validate applies the bounds check, then the alignment check.
func (fs *FlashStorage) validate(offset uint32, length int) error {
	if err := fs.checkBounds(offset, length); err != nil {
		return err
	}
	return checkAlignment(offset, length)
}
