// Package spinor implements the espflash firmware routines for a generic
// SPI NOR flash part on a tinygo.org/x/drivers SPI bus.
//
// Commands used (common to 25-series parts):
// • 0x03 read, 0x02 page program (256-byte pages), 0x20 4 KiB sector erase.
// • 0x06 write enable before every program/erase/status write.
// • 0x05 read status; bit 0 (WIP) is polled until clear.
// • 0x01 write status with 0x00 clears the block protection bits (unlock).
//
// Routines return firmware status codes: 0 ok, 1 bus error, 2 busy timeout.
package spinor

import (
	"time"

	"espstorage-go/drivers/espflash"
	"espstorage-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Pin is a chip-select output. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// Config controls busy polling. Zero values take defaults.
type Config struct {
	// BusyTimeout bounds each wait for WIP to clear. Default 400 ms.
	BusyTimeout time.Duration
	// PollInterval is the sleep between status reads. Default 50 µs.
	PollInterval time.Duration
}

// Device drives one SPI NOR part. The bus must already be configured.
type Device struct {
	bus drivers.SPI
	cs  Pin
	cfg Config

	// Fixed buffers to avoid per-call heap allocations.
	cmd [4]byte
	one [1]byte
}

var _ espflash.ROM = (*Device)(nil)

// New creates a Device on an already configured SPI bus and drives cs
// high. It does not talk to the part.
func New(bus drivers.SPI, cs Pin, cfg Config) *Device {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 400 * time.Millisecond
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Microsecond
	}
	cs.High()
	return &Device{bus: bus, cs: cs, cfg: cfg}
}

// JEDECID returns manufacturer, memory type and capacity bytes packed as
// 0x00MMTTCC.
func (d *Device) JEDECID() (uint32, error) {
	var id [3]byte
	d.one[0] = cmdJEDECID
	if err := d.transfer(d.one[:], id[:]); err != nil {
		return 0, err
	}
	return uint32(id[0])<<16 | uint32(id[1])<<8 | uint32(id[2]), nil
}

func (d *Device) Read(offset uint32, dst []byte) int32 {
	d.setCmd(cmdRead, offset)
	return rcOf(d.transfer(d.cmd[:], dst))
}

// Write programs src page by page; a page program never crosses a 256-byte
// boundary.
func (d *Device) Write(offset uint32, src []byte) int32 {
	for len(src) > 0 {
		n := mathx.Min(uint32(len(src)), PageSize-offset%PageSize)
		if rc := d.writeEnable(); rc != statusOK {
			return rc
		}
		d.setCmd(cmdPageProgram, offset)
		d.cs.Low()
		err := d.bus.Tx(d.cmd[:], nil)
		if err == nil {
			err = d.bus.Tx(src[:n], nil)
		}
		d.cs.High()
		if err != nil {
			return statusIOErr
		}
		if rc := d.waitReady(); rc != statusOK {
			return rc
		}
		offset += n
		src = src[n:]
	}
	return statusOK
}

func (d *Device) EraseSector(sector uint32) int32 {
	if rc := d.writeEnable(); rc != statusOK {
		return rc
	}
	d.setCmd(cmdSectorErase, sector*espflash.SectorSize)
	if err := d.transfer(d.cmd[:], nil); err != nil {
		return statusIOErr
	}
	return d.waitReady()
}

// Unlock clears the status register block protection bits.
func (d *Device) Unlock() int32 {
	if rc := d.writeEnable(); rc != statusOK {
		return rc
	}
	w := [2]byte{cmdWriteStatus, 0x00}
	if err := d.transfer(w[:], nil); err != nil {
		return statusIOErr
	}
	return d.waitReady()
}

// ---------------- Internals ----------------

func (d *Device) setCmd(op byte, addr uint32) {
	d.cmd[0] = op
	d.cmd[1] = byte(addr >> 16)
	d.cmd[2] = byte(addr >> 8)
	d.cmd[3] = byte(addr)
}

// transfer sends w then clocks len(r) bytes into r under one chip select.
func (d *Device) transfer(w, r []byte) error {
	d.cs.Low()
	defer d.cs.High()
	if err := d.bus.Tx(w, nil); err != nil {
		return err
	}
	if len(r) == 0 {
		return nil
	}
	return d.bus.Tx(nil, r)
}

func (d *Device) writeEnable() int32 {
	d.one[0] = cmdWriteEnable
	return rcOf(d.transfer(d.one[:], nil))
}

func (d *Device) status() (byte, error) {
	var sr [1]byte
	d.one[0] = cmdReadStatus
	err := d.transfer(d.one[:], sr[:])
	return sr[0], err
}

// waitReady polls WIP until clear or BusyTimeout elapses.
func (d *Device) waitReady() int32 {
	deadline := time.Now().Add(d.cfg.BusyTimeout)
	for {
		sr, err := d.status()
		if err != nil {
			return statusIOErr
		}
		if sr&statusWIP == 0 {
			return statusOK
		}
		if time.Now().After(deadline) {
			return statusTimeout
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

func rcOf(err error) int32 {
	if err != nil {
		return statusIOErr
	}
	return statusOK
}
