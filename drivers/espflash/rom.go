package espflash

// ROM is the set of firmware flash routines the driver is built on. Each
// call performs the physical operation and returns the firmware status
// code: 0 on success, nonzero on failure.
//
// Offsets and lengths are in bytes. Calls issued by FlashStorage are always
// word aligned, and dst/src are expected to start on a word boundary.
type ROM interface {
	Read(offset uint32, dst []byte) int32
	Write(offset uint32, src []byte) int32
	EraseSector(sector uint32) int32
	Unlock() int32
}
