// Package tilo is a minimal single-file terminal text editor.
// It emits VT100 escape sequences directly, without depending on ncurses,
// and applies lexical syntax highlighting that propagates correctly across
// line boundaries for multi-line comments.
package tilo

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
)

const Version = "0.1.0"

const quitConfirmTimes = 3

// Editor owns the buffer, the viewport, the terminal, and the syntax
// ruleset, and dispatches decoded keys to editing, movement and search
// operations. Single-threaded: every operation runs to completion before
// the next key is processed.
type Editor struct {
	term *Terminal
	buf  *Buffer
	view *View

	filePath string

	statusmsg  string
	statustime time.Time

	dirty     int
	quitTimes int
}

// New creates an Editor sized to the current terminal and installs the
// SIGWINCH handler.
func New() (*Editor, error) {
	buf := NewBuffer(nil)
	e := &Editor{
		term:      NewTerminal(),
		buf:       buf,
		view:      NewView(buf, Position{}),
		quitTimes: quitConfirmTimes,
	}
	if err := e.updateWindowSize(); err != nil {
		return nil, err
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		for range ch {
			e.handleSigWinCh()
		}
	}()
	return e, nil
}

func (e *Editor) updateWindowSize() error {
	rows, cols, err := e.term.WindowSize()
	if err != nil {
		return err
	}
	e.view.Screen = Position{X: cols, Y: rows - 2} // room for status lines
	return nil
}

func (e *Editor) handleSigWinCh() {
	e.updateWindowSize()
	e.view.MoveTo(e.view.Cursor)
	e.refreshScreen()
}

// ---------- File I/O ----------

// Open loads a file into the buffer and selects the syntax ruleset by its
// extension. A missing file is an error: the session edits existing files.
func (e *Editor) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	// Drop the empty tail produced by splitting a trailing newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	e.filePath = path
	e.buf.syntax = SelectRuleset(path)
	e.buf.Load(lines)
	e.dirty = 0
	return nil
}

// Save writes each buffer line followed by a newline, overwriting the file.
func (e *Editor) Save() error {
	var out bytes.Buffer
	for y := 0; y < e.buf.LineCount(); y++ {
		out.WriteString(string(e.buf.Read(y)))
		out.WriteByte('\n')
	}
	if err := os.WriteFile(e.filePath, out.Bytes(), 0644); err != nil {
		e.SetStatusMessage("Can't save! I/O error: %s", err)
		return err
	}
	e.dirty = 0
	e.SetStatusMessage("%d bytes written on disk", out.Len())
	return nil
}

// ---------- Editing operations ----------

func (e *Editor) ensureLineExists() {
	for e.buf.LineCount() <= e.view.Cursor.Y {
		e.buf.InsertLine(e.buf.LineCount(), nil)
	}
}

func (e *Editor) insertChar(c rune) {
	e.ensureLineExists()
	fix := e.view.Fixup(e.view.Cursor)

	text := e.buf.Read(fix.Y)
	out := make([]rune, 0, len(text)+1)
	out = append(out, text[:fix.X]...)
	out = append(out, c)
	out = append(out, text[fix.X:]...)
	e.buf.Mutate(fix.Y, out)

	e.view.MoveTo(Position{X: fix.X + 1, Y: fix.Y})
	e.dirty++
}

func (e *Editor) insertNewline() {
	e.ensureLineExists()
	fix := e.view.Fixup(e.view.Cursor)

	text := e.buf.Read(fix.Y)
	left := append([]rune(nil), text[:fix.X]...)
	right := append([]rune(nil), text[fix.X:]...)

	e.buf.Mutate(fix.Y, left)
	e.buf.InsertLine(fix.Y+1, right)
	e.view.MoveTo(Position{X: 0, Y: fix.Y + 1})
	e.dirty++
}

// backspace deletes the character left of the cursor, joining the line onto
// the previous one at column zero. At the very start of the buffer it does
// nothing.
func (e *Editor) backspace() {
	e.ensureLineExists()
	fix := e.view.Fixup(e.view.Cursor)

	if fix.X == 0 {
		if fix.Y == 0 {
			return
		}
		prev := e.buf.Read(fix.Y - 1)
		newX := len(prev)

		removed := e.buf.RemoveLine(fix.Y)
		joined := make([]rune, 0, newX+len(removed))
		joined = append(joined, prev...)
		joined = append(joined, removed...)
		e.buf.Mutate(fix.Y-1, joined)

		e.view.MoveTo(Position{X: newX, Y: fix.Y - 1})
	} else {
		text := e.buf.Read(fix.Y)
		out := make([]rune, 0, len(text)-1)
		out = append(out, text[:fix.X-1]...)
		out = append(out, text[fix.X:]...)
		e.buf.Mutate(fix.Y, out)

		e.view.MoveTo(Position{X: fix.X - 1, Y: fix.Y})
	}
	e.dirty++
}

// delForward deletes the character under the cursor, joining the next line
// up when the cursor sits at end of line. Past the end of the buffer it
// does nothing.
func (e *Editor) delForward() {
	if e.view.Cursor.Y >= e.buf.LineCount() {
		return
	}
	fix := e.view.Fixup(e.view.Cursor)
	text := e.buf.Read(fix.Y)

	if fix.X < len(text) {
		out := make([]rune, 0, len(text)-1)
		out = append(out, text[:fix.X]...)
		out = append(out, text[fix.X+1:]...)
		e.buf.Mutate(fix.Y, out)
	} else if fix.Y+1 < e.buf.LineCount() {
		next := e.buf.RemoveLine(fix.Y + 1)
		joined := make([]rune, 0, len(text)+len(next))
		joined = append(joined, text...)
		joined = append(joined, next...)
		e.buf.Mutate(fix.Y, joined)
	} else {
		return
	}
	e.view.MoveTo(fix)
	e.dirty++
}

// ---------- Rendering ----------

// visualCursor maps the buffer cursor to screen coordinates, accounting for
// tab expansion up to the cursor column.
func (e *Editor) visualCursor() Position {
	cur := e.view.Cursor
	vy := cur.Y - e.view.Offset.Y

	if cur.Y >= e.buf.LineCount() {
		return Position{X: 0, Y: vy}
	}

	text := e.buf.Read(cur.Y)
	take := uclamp(cur.X - e.view.Offset.X)
	if take > e.view.Screen.X {
		take = e.view.Screen.X
	}

	x := 0
	for j := e.view.Offset.X; j < len(text) && take > 0; j++ {
		if text[j] == '\t' {
			x++
			for x%tabStop != 0 {
				x++
			}
		} else {
			x++
		}
		take--
	}
	return Position{X: x, Y: vy}
}

func (e *Editor) refreshScreen() error {
	var ab bytes.Buffer

	ab.WriteString("\x1b[?25l") // Hide cursor
	ab.WriteString("\x1b[H")    // Go home

	for y := 0; y < e.view.Screen.Y; y++ {
		idx := e.view.Offset.Y + y
		if idx >= e.buf.LineCount() {
			ab.WriteString("~\x1b[0K\r\n")
			continue
		}

		render := e.buf.Render(idx)
		row := []rune(nil)
		if e.view.Offset.X < len(render) {
			end := e.view.Offset.X + e.view.Screen.X
			if end > len(render) {
				end = len(render)
			}
			row = render[e.view.Offset.X:end]
		}

		if hl := e.buf.Highlight(idx); hl != nil && len(row) > 0 {
			spans := hl.Spans[e.view.Offset.X : e.view.Offset.X+len(row)]
			currentColor := -1
			for j, ch := range row {
				color := colorFor(spans[j])
				if color != currentColor {
					fmt.Fprintf(&ab, "\x1b[%dm", color)
					currentColor = color
				}
				ab.WriteRune(ch)
			}
			ab.WriteString("\x1b[39m")
		} else {
			ab.WriteString(string(row))
		}
		ab.WriteString("\x1b[0K\r\n")
	}

	// Status bar (first line)
	ab.WriteString("\x1b[0K")
	ab.WriteString("\x1b[7m") // inverse video
	ab.WriteString(e.statusLine())
	ab.WriteString("\x1b[0m\r\n")

	// Status message (second line)
	ab.WriteString("\x1b[0K")
	if e.statusmsg != "" && time.Since(e.statustime) < 5*time.Second {
		ab.WriteString(runewidth.Truncate(e.statusmsg, e.view.Screen.X, ""))
	}

	ab.WriteString("\x1b[?25h") // Show cursor
	vc := e.visualCursor()
	fmt.Fprintf(&ab, "\x1b[%d;%dH", vc.Y+1, vc.X+1)

	_, err := e.term.Write(ab.Bytes())
	return err
}

func (e *Editor) statusLine() string {
	fix := e.view.Fixup(e.view.Cursor)

	modified := ""
	if e.dirty > 0 {
		modified = "(modified)"
	}
	left := fmt.Sprintf("%s:%d:%d - %d lines %s",
		runewidth.Truncate(e.filePath, 20, ""),
		fix.Y+1, fix.X, e.buf.LineCount(), modified)
	right := fmt.Sprintf("%d/%d", fix.Y+1, e.buf.LineCount())

	width := e.view.Screen.X
	left = runewidth.Truncate(left, width, "")
	lw := runewidth.StringWidth(left)
	rw := runewidth.StringWidth(right)
	if lw+rw < width {
		return left + strings.Repeat(" ", width-lw-rw) + right
	}
	return left + strings.Repeat(" ", width-lw)
}

// SetStatusMessage sets the transient status message shown on the second
// status line.
func (e *Editor) SetStatusMessage(format string, args ...interface{}) {
	e.statusmsg = fmt.Sprintf(format, args...)
	e.statustime = time.Now()
}

// ---------- Event processing ----------

func (e *Editor) processKey(k Key) bool {
	switch k {
	case keyEnter, '\n':
		e.insertNewline()
	case ctrlC:
		// Ignore
	case ctrlQ:
		if e.dirty > 0 && e.quitTimes > 0 {
			e.SetStatusMessage("WARNING!!! File has unsaved changes. "+
				"Press Ctrl-Q %d more times to quit.", e.quitTimes)
			e.quitTimes--
			return true
		}
		return false
	case ctrlS:
		// Save reports success or failure through the status message.
		e.Save()
	case ctrlF:
		if err := e.find(); err != nil {
			e.SetStatusMessage("Error: %s", err)
		}
	case keyBackspace, ctrlH:
		e.backspace()
	case keyDel:
		e.delForward()
	case keyHome:
		e.view.MoveTo(Position{X: 0, Y: e.view.Cursor.Y})
	case keyEnd:
		if cur := e.view.Cursor; cur.Y < e.buf.LineCount() {
			e.view.MoveTo(Position{X: len(e.buf.Read(cur.Y)), Y: cur.Y})
		}
	case keyPageUp:
		e.view.MoveBy(Delta{DY: -e.view.Screen.Y})
	case keyPageDown:
		e.view.MoveBy(Delta{DY: e.view.Screen.Y})
	case keyArrowUp:
		e.view.MoveBy(Delta{DY: -1})
	case keyArrowDown:
		e.view.MoveBy(Delta{DY: 1})
	case keyArrowLeft:
		e.view.MoveBy(Delta{DX: -1})
	case keyArrowRight:
		e.view.MoveBy(Delta{DX: 1})
	case ctrlL, keyEsc:
		// Refresh happens every iteration anyway.
	default:
		if k == keyTab || (k >= 32 && k < 127) {
			e.insertChar(rune(k))
		}
	}
	e.quitTimes = quitConfirmTimes
	return true
}

// Run enables raw mode, switches to the alternate screen buffer, and
// processes keys until the user quits. The terminal is restored on every
// exit path, including SIGTERM and SIGINT.
func (e *Editor) Run() error {
	if err := e.term.EnableRawMode(); err != nil {
		return err
	}

	e.term.Write([]byte("\x1b[?1049h")) // alternate screen buffer

	cleanup := func() {
		e.term.Write([]byte("\x1b[?1049l"))
		if err := e.term.Restore(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: couldn't restore terminal: %s\n", err)
		}
	}
	defer cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	e.SetStatusMessage("HELP: Ctrl-S = save | Ctrl-Q = quit | Ctrl-F = find")
	for {
		if err := e.refreshScreen(); err != nil {
			return err
		}
		k, err := ReadKey(e.term)
		if err != nil {
			return err
		}
		if k == KeyNone {
			continue
		}
		if !e.processKey(k) {
			return nil
		}
	}
}
