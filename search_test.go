package tilo

import (
	"os"
	"strings"
	"testing"
)

func TestIndexFrom(t *testing.T) {
	line := []rune("b one b")

	tests := []struct {
		name  string
		query string
		from  int
		want  int
	}{
		{"at start", "b", 0, 0},
		{"after first", "b", 1, 6},
		{"no match", "z", 0, -1},
		{"from past end", "b", 7, -1},
		{"from way past end", "b", 99, -1},
		{"empty query matches in place", "", 3, 3},
		{"query longer than rest", "one b!", 2, -1},
	}
	for _, tc := range tests {
		if got := indexFrom(line, []rune(tc.query), tc.from); got != tc.want {
			t.Errorf("%s: indexFrom(%q, %d) = %d, want %d",
				tc.name, tc.query, tc.from, got, tc.want)
		}
	}

	if got := indexFrom(nil, []rune("x"), 0); got != -1 {
		t.Errorf("empty line: got %d, want -1", got)
	}
}

func TestLastIndexBefore(t *testing.T) {
	line := []rune("b one b")

	tests := []struct {
		name  string
		query string
		to    int
		want  int
	}{
		{"strictly before", "b", 6, 0},
		{"to past end never matches", "b", 99, -1},
		{"at zero", "b", 0, -1},
		{"mid line", "one", 5, 2},
		{"match must fit", "one", 4, -1},
		{"no match", "z", 6, -1},
	}
	for _, tc := range tests {
		if got := lastIndexBefore(line, []rune(tc.query), tc.to); got != tc.want {
			t.Errorf("%s: lastIndexBefore(%q, %d) = %d, want %d",
				tc.name, tc.query, tc.to, got, tc.want)
		}
	}
}

func searchEditor(lines ...string) *Editor {
	buf := NewBuffer(nil)
	buf.Load(lines)
	return &Editor{
		buf:       buf,
		view:      NewView(buf, Position{X: 80, Y: 24}),
		quitTimes: quitConfirmTimes,
	}
}

func TestSearchForwardAcrossLines(t *testing.T) {
	e := searchEditor("alpha", "beta", "gamma")

	if !e.searchForward([]rune("gam")) {
		t.Fatal("searchForward failed")
	}
	if e.view.Cursor != (Position{X: 0, Y: 2}) {
		t.Fatalf("cursor = %v, want {0 2}", e.view.Cursor)
	}

	// No wraparound: nothing ahead of the cursor matches "alpha".
	if e.searchForward([]rune("alpha")) {
		t.Fatal("searchForward wrapped around")
	}
}

func TestSearchBackwardAcrossLines(t *testing.T) {
	e := searchEditor("alpha", "beta", "gamma")
	e.view.MoveTo(Position{X: 0, Y: 2})

	if !e.searchBackward([]rune("alp")) {
		t.Fatal("searchBackward failed")
	}
	if e.view.Cursor != (Position{X: 0, Y: 0}) {
		t.Fatalf("cursor = %v, want {0 0}", e.view.Cursor)
	}

	if e.searchBackward([]rune("alp")) {
		t.Fatal("searchBackward matched at or after the cursor")
	}
}

// pipeEditor builds an editor whose terminal input replays script and whose
// output goes to the null device, so the full search loop can run headless.
// The script must end with Enter or Escape; once the pipe drains, reads
// behave like timeouts, which the decoder treats as "no data".
func pipeEditor(t *testing.T, script string, lines ...string) *Editor {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString(script); err != nil {
		t.Fatal(err)
	}
	w.Close()

	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		devnull.Close()
	})

	buf := NewBuffer(nil)
	buf.Load(lines)
	return &Editor{
		term:      &Terminal{inFd: int(r.Fd()), out: devnull},
		buf:       buf,
		view:      NewView(buf, Position{X: 80, Y: 24}),
		quitTimes: quitConfirmTimes,
	}
}

func TestFindMovesToMatch(t *testing.T) {
	e := pipeEditor(t, "bet\r", "alpha", "beta")
	if err := e.find(); err != nil {
		t.Fatalf("find: %v", err)
	}
	if e.view.Cursor != (Position{X: 0, Y: 1}) {
		t.Fatalf("cursor = %v, want {0 1}", e.view.Cursor)
	}
}

func TestFindMissingQueryKeepsCursor(t *testing.T) {
	e := pipeEditor(t, "z\r", "aaa", "bbb")
	e.view.MoveTo(Position{X: 1, Y: 1})

	if err := e.find(); err != nil {
		t.Fatalf("find: %v", err)
	}
	if e.view.Cursor != (Position{X: 1, Y: 1}) {
		t.Fatalf("cursor = %v, want {1 1} (failed search must not move)", e.view.Cursor)
	}
}

func TestFindEscapeRestoresPosition(t *testing.T) {
	e := pipeEditor(t, "b\x1b", "abc")
	if err := e.find(); err != nil {
		t.Fatalf("find: %v", err)
	}
	if e.view.Cursor != (Position{X: 0, Y: 0}) {
		t.Fatalf("cursor = %v, want {0 0} after escape", e.view.Cursor)
	}
	if e.statusmsg != "" {
		t.Fatalf("status message = %q, want cleared", e.statusmsg)
	}
}

func TestFindArrowsSetDirection(t *testing.T) {
	// 'b', ArrowRight (next match), ArrowLeft (back), Enter.
	e := pipeEditor(t, "b\x1b[C\x1b[D\r", "b one", "b two")

	if err := e.find(); err != nil {
		t.Fatalf("find: %v", err)
	}
	// Forward from the first hit lands on line 1; backward returns.
	if e.view.Cursor != (Position{X: 0, Y: 0}) {
		t.Fatalf("cursor = %v, want {0 0}", e.view.Cursor)
	}
}

func TestFindRestoresMatchPainting(t *testing.T) {
	buf := NewBuffer(SelectRuleset("x.rs"))
	buf.Load([]string{"let b = 1;"})
	before := spansString(buf.Highlight(0).Spans)

	e := pipeEditor(t, "b\r", "unused")
	e.buf = buf
	e.view = NewView(buf, Position{X: 80, Y: 24})

	if err := e.find(); err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := spansString(buf.Highlight(0).Spans); got != before {
		t.Fatalf("spans after search = %q, want %q (painting undone)", got, before)
	}
	if strings.ContainsRune(spansString(buf.Highlight(0).Spans), 'M') {
		t.Fatal("match painting leaked")
	}
}
