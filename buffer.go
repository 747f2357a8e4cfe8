package tilo

// Line is one line of the file: the raw text, its tab-expanded render form,
// and a cached highlight result. hl is nil whenever stale.
type Line struct {
	text   []rune
	render []rune
	hl     *HighlightResult
}

const tabStop = 8

// expandTabs derives the render form: every tab advances to the next
// multiple of tabStop columns, everything else passes through.
func expandTabs(text []rune) []rune {
	render := make([]rune, 0, len(text))
	for _, c := range text {
		if c == '\t' {
			render = append(render, ' ')
			for len(render)%tabStop != 0 {
				render = append(render, ' ')
			}
		} else {
			render = append(render, c)
		}
	}
	return render
}

// Buffer is the ordered line sequence of the document. All mutations go
// through it so cached highlights are invalidated and repaired in one place;
// the UI layer never computes highlights itself.
type Buffer struct {
	lines  []*Line
	syntax *Ruleset
}

// NewBuffer returns an empty buffer highlighted with rs, which may be nil
// for no highlighting.
func NewBuffer(rs *Ruleset) *Buffer {
	return &Buffer{syntax: rs}
}

// Load replaces the buffer contents, one Line per input string.
func (b *Buffer) Load(lines []string) {
	b.lines = b.lines[:0]
	for _, s := range lines {
		text := []rune(s)
		b.lines = append(b.lines, &Line{text: text, render: expandTabs(text)})
	}
	b.rehighlightFrom(0)
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Read returns the raw text of line y. The result is aliased, not copied;
// callers mutate only through Mutate.
func (b *Buffer) Read(y int) []rune {
	return b.lines[y].text
}

// Render returns the tab-expanded form of line y.
func (b *Buffer) Render(y int) []rune {
	return b.lines[y].render
}

// Highlight returns the cached highlight of line y, or nil when the buffer
// has no ruleset.
func (b *Buffer) Highlight(y int) *HighlightResult {
	return b.lines[y].hl
}

// Mutate replaces the text of line y and repairs highlights from y onward.
func (b *Buffer) Mutate(y int, text []rune) {
	ln := b.lines[y]
	ln.text = text
	ln.render = expandTabs(text)
	ln.hl = nil
	b.rehighlightFrom(y)
}

// InsertLine inserts a new line before index y (append when y equals the
// line count).
func (b *Buffer) InsertLine(y int, text []rune) {
	ln := &Line{text: text, render: expandTabs(text)}
	b.lines = append(b.lines, nil)
	copy(b.lines[y+1:], b.lines[y:])
	b.lines[y] = ln
	b.rehighlightFrom(y)
}

// RemoveLine deletes line y and returns its text.
func (b *Buffer) RemoveLine(y int) []rune {
	removed := b.lines[y].text
	b.lines = append(b.lines[:y], b.lines[y+1:]...)
	b.rehighlightFrom(y)
	return removed
}

// rehighlightFrom repairs the highlight chain starting at line y. Each line
// is recomputed when its cache is stale or was computed under a different
// carry state than the previous line now ends in. Once a line's cached
// initial state matches the incoming carry the rest of the chain is already
// consistent and the scan stops.
func (b *Buffer) rehighlightFrom(y int) {
	if b.syntax == nil {
		return
	}
	for i := y; i < len(b.lines); i++ {
		carry := stateNormal
		if i > 0 {
			carry = b.lines[i-1].hl.Ending
		}
		ln := b.lines[i]
		if ln.hl != nil && ln.hl.Initial == carry {
			break
		}
		res := b.syntax.Highlight(carry, ln.render)
		ln.hl = &res
	}
}
