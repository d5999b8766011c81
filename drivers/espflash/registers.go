package espflash

const (
	// WordSize is the transfer granularity of the firmware routines.
	WordSize = 4
	// SectorSize is the erase granularity.
	SectorSize = 4096

	mib = 1024 * 1024

	// Identification read: the image header at IDAddress. Byte 3 carries
	// the flash size code in its high nibble.
	idLength      = 8
	idDensityByte = 3
	idDensityMask = 0xF0
)
