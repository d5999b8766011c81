//go:build !rp2040

// Command flashconsole serves the flash console. This build runs against a
// simulated part on stdin/stdout; the optional argument is its size in MiB.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strconv"

	"espstorage-go/console"
	"espstorage-go/drivers/espflash"
	"espstorage-go/drivers/espflash/romsim"
	"espstorage-go/storage"
)

func main() {
	sizeMiB := uint64(4)
	if len(os.Args) > 1 {
		v, err := strconv.ParseUint(os.Args[1], 10, 32)
		if err != nil || !romsim.SupportedSize(uint32(v)) {
			println("Error: size must be one of 1, 2, 4, 8, 16 MiB:", os.Args[1])
			os.Exit(2)
		}
		sizeMiB = v
	}

	fs := espflash.Shared(romsim.New(romsim.Config{SizeMiB: uint32(sizeMiB)}))
	if fs.Capacity() == 0 {
		println("Error: flash size not detected; all accesses will fail")
	} else {
		println("Info: flash capacity", fs.Capacity(), "bytes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rw := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	if err := console.Run(ctx, rw, storage.New(fs), console.Config{}); err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
}

