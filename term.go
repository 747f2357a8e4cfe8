package tilo

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal owns the tty: raw mode save/restore, bounded single-byte reads,
// buffered escape-sequence output, and window size queries.
//
// Raw mode is configured with VMIN=0 and VTIME=1, so ReadByte waits at most
// one decisecond and reports "no data" on timeout. The escape-sequence
// decoder relies on this to tell a lone Escape keypress from the start of a
// multi-byte sequence.
type Terminal struct {
	inFd int
	out  *os.File
	orig *unix.Termios
}

// NewTerminal wraps stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{
		inFd: int(os.Stdin.Fd()),
		out:  os.Stdout,
	}
}

// EnableRawMode switches the input tty to raw mode, saving the original
// settings for Restore. Calling it while already raw is a no-op.
func (t *Terminal) EnableRawMode() error {
	if t.orig != nil {
		return nil
	}
	if !term.IsTerminal(t.inFd) {
		return fmt.Errorf("not a tty")
	}
	orig, err := unix.IoctlGetTermios(t.inFd, ioctlReadTermios)
	if err != nil {
		return err
	}

	raw := *orig
	// Input modes: no break, no CR -> newline, no parity check,
	// no strip char, no start/stop output control
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	// Output modes: disable post-processing
	raw.Oflag &^= unix.OPOST
	// Control modes: set 8-bit chars
	raw.Cflag |= unix.CS8
	// Local modes: no echoing, not canonical, no extended functions,
	// no signal chars (^Z, ^C)
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	// Return each byte, or zero after a one decisecond timeout
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(t.inFd, ioctlWriteTermios, &raw); err != nil {
		return err
	}
	t.orig = orig
	return nil
}

// Restore puts the tty back into its original mode. It is safe to call more
// than once; only the first call after EnableRawMode does anything.
func (t *Terminal) Restore() error {
	if t.orig == nil {
		return nil
	}
	err := unix.IoctlSetTermios(t.inFd, ioctlWriteTermios, t.orig)
	t.orig = nil
	return err
}

// ReadByte polls the tty for a single byte. ok is false when the poll timed
// out with nothing available (the VTIME bound), which is not an error.
func (t *Terminal) ReadByte() (b byte, ok bool, err error) {
	var buf [1]byte
	n, err := unix.Read(t.inFd, buf[:])
	if n == 1 {
		return buf[0], true, nil
	}
	if err != nil && err != unix.EAGAIN && err != unix.EINTR {
		return 0, false, err
	}
	return 0, false, nil
}

func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// WindowSize reports the tty size in rows and columns. When the ioctl fails
// or reports zero columns it falls back to x/term, and past that to 80x24,
// since the cursor-position query trick needs raw mode which may not be
// active yet.
func (t *Terminal) WindowSize() (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err == nil && ws.Col != 0 {
		return int(ws.Row), int(ws.Col), nil
	}
	if c, r, err := term.GetSize(int(t.out.Fd())); err == nil && c > 0 {
		return r, c, nil
	}
	return 24, 80, nil
}
