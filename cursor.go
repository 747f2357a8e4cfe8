package tilo

// Position is a character-index column and line index. Both are counted in
// Unicode scalar values, never bytes.
type Position struct {
	X, Y int
}

// Delta is a relative cursor motion.
type Delta struct {
	DX, DY int
}

func uclamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// View is the cursor/viewport pair over a buffer: the cursor position, the
// top-left visible offset, and the visible screen size (rows already reduced
// by the status lines).
type View struct {
	Cursor Position
	Offset Position
	Screen Position

	buf *Buffer
}

func NewView(buf *Buffer, screen Position) *View {
	return &View{Screen: screen, buf: buf}
}

// Fixup clamps the column of p to the length of its line, if that line
// exists. It never touches the row.
func (v *View) Fixup(p Position) Position {
	if p.Y < v.buf.LineCount() {
		if n := len(v.buf.Read(p.Y)); p.X > n {
			p.X = n
		}
	}
	return p
}

// MoveTo clamps the row into the buffer, scrolls the viewport so the row is
// visible, and commits the cursor. The column is deliberately not fixed up:
// vertical motion keeps a sticky column across short lines.
func (v *View) MoveTo(p Position) {
	if p.Y >= v.buf.LineCount() {
		if v.buf.LineCount() == 0 {
			p.Y = 0
		} else {
			p.Y = v.buf.LineCount() - 1
		}
	}
	v.scrollTo(p)
	v.Cursor = p
}

func (v *View) scrollTo(p Position) {
	if p.Y < v.Offset.Y {
		v.Offset.Y = p.Y
	} else if p.Y >= v.Offset.Y+v.Screen.Y {
		v.Offset.Y = p.Y - v.Screen.Y + 1
	}
}

// MoveBy applies a relative motion with saturating-at-zero arithmetic.
// Horizontal intent forces a fixup both before and after the move; pure
// vertical motion carries the raw column over unclamped.
func (v *View) MoveBy(d Delta) {
	cur := v.Cursor
	if d.DX != 0 {
		cur = v.Fixup(cur)
	}

	next := Position{
		X: uclamp(cur.X + d.DX),
		Y: uclamp(cur.Y + d.DY),
	}
	if d.DX != 0 {
		next = v.Fixup(next)
	}

	v.MoveTo(next)
}
