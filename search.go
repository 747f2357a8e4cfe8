package tilo

// indexFrom returns the character index of the first occurrence of query in
// line at or after from, or -1. A from index at or past the end of the line
// never matches.
func indexFrom(line, query []rune, from int) int {
	if from >= len(line) {
		return -1
	}
	for s := from; s+len(query) <= len(line); s++ {
		if runesEqual(line[s:s+len(query)], query) {
			return s
		}
	}
	return -1
}

// lastIndexBefore returns the character index of the last occurrence of
// query ending at or before to, or -1. A to index at or past the end of the
// line never matches.
func lastIndexBefore(line, query []rune, to int) int {
	if to >= len(line) {
		return -1
	}
	for s := to - len(query); s >= 0; s-- {
		if runesEqual(line[s:s+len(query)], query) {
			return s
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// searchForward finds the next occurrence of query at or after the cursor,
// moving the cursor to it. No wraparound: reaching the last line without a
// match fails with the cursor left wherever the scan ended (the caller
// restores it).
func (e *Editor) searchForward(query []rune) bool {
	if e.buf.LineCount() == 0 {
		return false
	}
	for {
		cur := e.view.Cursor
		if idx := indexFrom(e.buf.Read(cur.Y), query, cur.X); idx >= 0 {
			e.view.MoveTo(Position{X: idx, Y: cur.Y})
			return true
		}
		if cur.Y+1 == e.buf.LineCount() {
			return false
		}
		e.view.MoveTo(Position{X: 0, Y: cur.Y + 1})
	}
}

// searchBackward finds the previous occurrence of query strictly before the
// cursor. No wraparound past line 0.
func (e *Editor) searchBackward(query []rune) bool {
	if e.buf.LineCount() == 0 {
		return false
	}
	for {
		cur := e.view.Cursor
		if idx := lastIndexBefore(e.buf.Read(cur.Y), query, cur.X); idx >= 0 {
			e.view.MoveTo(Position{X: idx, Y: cur.Y})
			return true
		}
		if cur.Y == 0 {
			return false
		}
		upper := len(e.buf.Read(cur.Y - 1))
		e.view.MoveTo(Position{X: uclamp(upper - 1), Y: cur.Y - 1})
	}
}

// find runs the incremental search loop: the query is edited live, arrow
// keys set the scan direction, Enter keeps the current position and Escape
// restores the one saved on entry. A failed search never moves the cursor.
func (e *Editor) find() error {
	var query []rune
	direction := 0

	savedCursor := e.view.Cursor
	savedOffset := e.view.Offset

	// One line at a time may carry a transient Match painting over its
	// highlight spans; restore undoes it before the next paint or on exit.
	paintedLine := -1
	var paintedSpans []Class
	restorePaint := func() {
		if paintedLine >= 0 {
			copy(e.buf.Highlight(paintedLine).Spans, paintedSpans)
			paintedLine = -1
		}
	}

	for {
		e.SetStatusMessage("Search: %s (Use ESC/Arrows/Enter)", string(query))
		if err := e.refreshScreen(); err != nil {
			restorePaint()
			return err
		}

		k, err := ReadKey(e.term)
		if err != nil {
			restorePaint()
			return err
		}
		if k == KeyNone {
			continue
		}

		switch {
		case k == keyBackspace || k == ctrlH:
			if len(query) > 0 {
				query = query[:len(query)-1]
			}
		case k == keyEsc || k == keyEnter || k == '\n':
			if k == keyEsc {
				e.view.Cursor = savedCursor
				e.view.Offset = savedOffset
			}
			restorePaint()
			e.SetStatusMessage("")
			return nil
		case k == keyArrowRight || k == keyArrowDown:
			direction = 1
		case k == keyArrowLeft || k == keyArrowUp:
			direction = -1
		case k >= 32 && k < 127:
			query = append(query, rune(k))
		default:
			// Ignored.
		}

		tmpCursor := e.view.Cursor
		var found bool
		if direction >= 0 {
			if direction > 0 {
				// Step past the current match before re-searching.
				e.view.MoveBy(Delta{DX: 1})
			}
			found = e.searchForward(query)
		} else {
			found = e.searchBackward(query)
		}

		restorePaint()
		if found {
			paintedLine, paintedSpans = e.paintMatch(len(query))
		} else {
			e.view.MoveTo(tmpCursor)
		}
	}
}

// paintMatch overlays the Match class on the query-sized region under the
// cursor, returning what it takes to undo that.
func (e *Editor) paintMatch(queryLen int) (line int, saved []Class) {
	cur := e.view.Cursor
	hl := e.buf.Highlight(cur.Y)
	if hl == nil || queryLen == 0 {
		return -1, nil
	}

	saved = make([]Class, len(hl.Spans))
	copy(saved, hl.Spans)

	rx := renderIndex(e.buf.Read(cur.Y), cur.X)
	for j := rx; j < rx+queryLen && j < len(hl.Spans); j++ {
		hl.Spans[j] = hlMatch
	}
	return cur.Y, saved
}

// renderIndex translates a character index in text to the corresponding
// index in its tab-expanded render form.
func renderIndex(text []rune, x int) int {
	rx := 0
	for j := 0; j < x && j < len(text); j++ {
		if text[j] == '\t' {
			rx++
			for rx%tabStop != 0 {
				rx++
			}
		} else {
			rx++
		}
	}
	return rx
}
