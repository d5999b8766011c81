//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"espstorage-go/console"
	"espstorage-go/drivers/espflash"
	"espstorage-go/drivers/spinor"
	"espstorage-go/storage"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// External SPI NOR on SPI0: SCK GP18, SDO GP19, SDI GP16, CS GP17.
const (
	pinSCK = machine.GP18
	pinSDO = machine.GP19
	pinSDI = machine.GP16
	pinCS  = machine.GP17

	consoleBaud = 115200
)

// uartRW adapts uartx to io.ReadWriter for the console.
type uartRW struct {
	ctx context.Context
	u   *uartx.UART
}

func (p *uartRW) Read(b []byte) (int, error)  { return p.u.RecvSomeContext(p.ctx, b) }
func (p *uartRW) Write(b []byte) (int, error) { return p.u.Write(b) }

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("Info: flashconsole boot")

	pinCS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 8_000_000,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
	}); err != nil {
		println("Error: spi configure:", err.Error())
		return
	}
	nor := spinor.New(machine.SPI0, pinCS, spinor.Config{})
	if id, err := nor.JEDECID(); err == nil {
		println("Info: jedec id", id)
	}

	// A blank or non-ESP part has no image header to size it from.
	if wrote, err := nor.ProvisionHeader(espflash.IDAddress); err != nil {
		println("Error: header provisioning:", err.Error())
	} else if wrote {
		println("Info: image header density byte programmed")
	}

	fs := espflash.Shared(nor)
	println("Info: flash capacity", fs.Capacity(), "bytes")

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	ctx := context.Background()
	for {
		err := console.Run(ctx, &uartRW{ctx: ctx, u: u}, storage.New(fs), console.Config{})
		if err != nil {
			println("Error: console:", err.Error())
		}
		println("Info: console restarted")
	}
}
