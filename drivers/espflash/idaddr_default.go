//go:build !(esp32 || esp32s2)

package espflash

// IDAddress is the flash offset of the bootloader image header.
const IDAddress uint32 = 0x0000
