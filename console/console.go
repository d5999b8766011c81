// Package console is a line-oriented flash inspection shell.
//
//	info                      capacity, sector count, lock state
//	read  <off> <len>         hex bytes, any offset/length
//	dump  <off> <len>         hex + ASCII rows of 16 bytes
//	write <off> <hex>         read-modify-write through storage
//	rawwrite <off> <hex>      direct program, no erase (word aligned)
//	erase <sector>            erase one sector
//	help, quit
//
// Numbers are decimal or 0x-prefixed hex. Failures print "error: <code>".
package console

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"espstorage-go/drivers/espflash"
	"espstorage-go/errcode"
	"espstorage-go/storage"
	"espstorage-go/x/conv"
	"espstorage-go/x/mathx"

	"github.com/google/shlex"
)

// Config controls console behaviour. Zero values take defaults.
type Config struct {
	// Prompt is printed before each line. Default "flash> ".
	Prompt string
	// MaxRead caps read and dump lengths. Default one sector.
	MaxRead int
}

// Console executes commands against a Storage and writes results to w.
type Console struct {
	st  *storage.Storage
	w   io.Writer
	cfg Config
}

// New creates a Console. Output goes to w; nothing is read until Exec or Run.
func New(st *storage.Storage, w io.Writer, cfg Config) *Console {
	if cfg.Prompt == "" {
		cfg.Prompt = "flash> "
	}
	if cfg.MaxRead <= 0 {
		cfg.MaxRead = espflash.SectorSize
	}
	return &Console{st: st, w: w, cfg: cfg}
}

// Run serves commands from rw until quit, EOF or ctx is cancelled. The
// context is checked between lines.
func Run(ctx context.Context, rw io.ReadWriter, st *storage.Storage, cfg Config) error {
	c := New(st, rw, cfg)
	sc := bufio.NewScanner(rw)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		io.WriteString(c.w, c.cfg.Prompt)
		if !sc.Scan() {
			return sc.Err()
		}
		if c.Exec(sc.Text()) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the console should exit.
func (c *Console) Exec(line string) (quit bool) {
	args, err := shlex.Split(line)
	if err != nil {
		c.fail(&errcode.E{C: errcode.InvalidParams, Op: "parse", Err: err})
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "quit", "exit":
		return true
	case "help":
		c.help()
	case "info":
		c.info()
	case "read":
		err = c.read(args[1:])
	case "dump":
		err = c.dump(args[1:])
	case "write":
		err = c.write(args[1:], false)
	case "rawwrite":
		err = c.write(args[1:], true)
	case "erase":
		err = c.erase(args[1:])
	default:
		err = &errcode.E{C: errcode.UnknownCommand, Op: "exec", Msg: args[0]}
	}
	if err != nil {
		c.fail(err)
	}
	return false
}

func (c *Console) fail(err error) {
	fmt.Fprintf(c.w, "error: %s\n", errcode.Of(err))
}

func (c *Console) help() {
	io.WriteString(c.w, "commands: info, read <off> <len>, dump <off> <len>, "+
		"write <off> <hex>, rawwrite <off> <hex>, erase <sector>, quit\n")
}

func (c *Console) info() {
	fs := c.st.Flash()
	fmt.Fprintf(c.w, "capacity: %d bytes (%d MiB)\n", fs.Capacity(), fs.Capacity()/(1024*1024))
	fmt.Fprintf(c.w, "sectors: %d x %d\n", fs.SectorCount(), espflash.SectorSize)
	fmt.Fprintf(c.w, "unlocked: %t\n", fs.Unlocked())
}

// span parses "<off> <len>" and clamps len to MaxRead.
func (c *Console) span(args []string) (off int64, n int, err error) {
	if len(args) != 2 {
		return 0, 0, errcode.InvalidParams
	}
	o, err := parseNum(args[0])
	if err != nil {
		return 0, 0, err
	}
	l, err := parseNum(args[1])
	if err != nil {
		return 0, 0, err
	}
	return int64(o), mathx.Clamp(int(l), 0, c.cfg.MaxRead), nil
}

func (c *Console) read(args []string) error {
	off, n, err := c.span(args)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := c.st.ReadAt(buf, off); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "% x\n", buf)
	return nil
}

func (c *Console) dump(args []string) error {
	off, n, err := c.span(args)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := c.st.ReadAt(buf, off); err != nil {
		return err
	}
	var addr [8]byte
	for i := 0; i < len(buf); i += 16 {
		row := buf[i:mathx.Min(i+16, len(buf))]
		c.w.Write(conv.U32Hex(addr[:], uint32(off)+uint32(i)))
		fmt.Fprintf(c.w, "  %-47s  |%s|\n", fmt.Sprintf("% x", row), printable(row))
	}
	return nil
}

func (c *Console) write(args []string, raw bool) error {
	if len(args) != 2 {
		return errcode.InvalidParams
	}
	off, err := parseNum(args[0])
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(args[1])
	if err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "write", Err: err}
	}
	if raw {
		err = c.st.Flash().Write(uint32(off), data)
	} else {
		_, err = c.st.WriteAt(data, int64(off))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "ok: wrote %d bytes at 0x%x\n", len(data), off)
	return nil
}

func (c *Console) erase(args []string) error {
	if len(args) != 1 {
		return errcode.InvalidParams
	}
	sector, err := parseNum(args[0])
	if err != nil {
		return err
	}
	if err := c.st.Erase(int64(sector)*espflash.SectorSize, espflash.SectorSize); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "ok: erased sector %d\n", sector)
	return nil
}

func parseNum(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "parse", Msg: s, Err: err}
	}
	return uint32(v), nil
}

func printable(p []byte) string {
	out := make([]byte, len(p))
	for i, b := range p {
		if b < 0x20 || b > 0x7E {
			b = '.'
		}
		out[i] = b
	}
	return string(out)
}
