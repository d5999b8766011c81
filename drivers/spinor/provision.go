package spinor

import "errors"

// Errors returned by ProvisionHeader.
var (
	ErrBus             = errors.New("spinor: bus error")
	ErrBusy            = errors.New("spinor: busy timeout")
	ErrUnknownCapacity = errors.New("spinor: unknown JEDEC capacity code")
)

// JEDEC capacity byte range mapped onto image header density codes:
// 0x14 (1 MiB) .. 0x18 (16 MiB).
const (
	jedecCap1MiB  = 0x14
	jedecCap16MiB = 0x18

	headerDensityByte = 3
	headerBlank       = 0xFF
)

// ProvisionHeader makes a blank part detectable by espflash. If the density
// byte of the image header at idAddr is still erased (0xFF), it is programmed
// with the code matching the part's JEDEC capacity. It reports whether a
// write was made. Call it before espflash.New.
func (d *Device) ProvisionHeader(idAddr uint32) (bool, error) {
	var hdr [4]byte
	if err := errOf(d.Read(idAddr, hdr[:])); err != nil {
		return false, err
	}
	if hdr[headerDensityByte] != headerBlank {
		return false, nil
	}
	id, err := d.JEDECID()
	if err != nil {
		return false, ErrBus
	}
	capCode := byte(id)
	if capCode < jedecCap1MiB || capCode > jedecCap16MiB {
		return false, ErrUnknownCapacity
	}
	density := [1]byte{(capCode - jedecCap1MiB) << 4}
	if err := errOf(d.Unlock()); err != nil {
		return false, err
	}
	if err := errOf(d.Write(idAddr+headerDensityByte, density[:])); err != nil {
		return false, err
	}
	return true, nil
}

func errOf(rc int32) error {
	switch rc {
	case statusOK:
		return nil
	case statusTimeout:
		return ErrBusy
	default:
		return ErrBus
	}
}
