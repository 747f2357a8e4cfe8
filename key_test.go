package tilo

import (
	"errors"
	"testing"
)

// scriptEvent is one ReadByte outcome: either a byte or a timeout slot.
type scriptEvent struct {
	b       byte
	timeout bool
}

// scriptReader replays a fixed sequence of poll outcomes. Once exhausted it
// times out forever.
type scriptReader struct {
	events []scriptEvent
	pos    int
	err    error
}

func (r *scriptReader) ReadByte() (byte, bool, error) {
	if r.err != nil {
		return 0, false, r.err
	}
	if r.pos >= len(r.events) {
		return 0, false, nil
	}
	ev := r.events[r.pos]
	r.pos++
	if ev.timeout {
		return 0, false, nil
	}
	return ev.b, true, nil
}

func bytesScript(s string) []scriptEvent {
	var evs []scriptEvent
	for i := 0; i < len(s); i++ {
		evs = append(evs, scriptEvent{b: s[i]})
	}
	return evs
}

func TestReadKey(t *testing.T) {
	timeout := scriptEvent{timeout: true}

	tests := []struct {
		name   string
		events []scriptEvent
		want   Key
	}{
		{"plain char", bytesScript("a"), Key('a')},
		{"control char", bytesScript("\x11"), ctrlQ},
		{"lone escape", []scriptEvent{{b: 0x1b}, timeout}, keyEsc},
		{"arrow up", bytesScript("\x1b[A"), keyArrowUp},
		{"arrow down", bytesScript("\x1b[B"), keyArrowDown},
		{"arrow right", bytesScript("\x1b[C"), keyArrowRight},
		{"arrow left", bytesScript("\x1b[D"), keyArrowLeft},
		{"home csi", bytesScript("\x1b[H"), keyHome},
		{"end csi", bytesScript("\x1b[F"), keyEnd},
		{"delete", bytesScript("\x1b[3~"), keyDel},
		{"page up", bytesScript("\x1b[5~"), keyPageUp},
		{"page down", bytesScript("\x1b[6~"), keyPageDown},
		{"home ss3", bytesScript("\x1bOH"), keyHome},
		{"end ss3", bytesScript("\x1bOF"), keyEnd},
		{"unknown ss3", bytesScript("\x1bOx"), KeyNone},
		{"unknown csi", bytesScript("\x1b[1;5R"), KeyNone},
		{"invalid escape", bytesScript("\x1bz"), KeyNone},
		{"csi aborted by timeout", []scriptEvent{{b: 0x1b}, {b: '['}, timeout}, keyEsc},
		{"csi param aborted by timeout", []scriptEvent{{b: 0x1b}, {b: '['}, {b: '3'}, timeout}, keyEsc},
		{"ss3 aborted by timeout", []scriptEvent{{b: 0x1b}, {b: 'O'}, timeout}, keyEsc},
		{"blocks through empty polls", []scriptEvent{timeout, timeout, {b: 'x'}}, Key('x')},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadKey(&scriptReader{events: tc.events})
			if err != nil {
				t.Fatalf("ReadKey: unexpected error %v", err)
			}
			if got != tc.want {
				t.Fatalf("ReadKey = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadKeyPropagatesError(t *testing.T) {
	wantErr := errors.New("read failed")
	if _, err := ReadKey(&scriptReader{err: wantErr}); err != wantErr {
		t.Fatalf("ReadKey error = %v, want %v", err, wantErr)
	}
}

func TestReadKeyDecodesIndependently(t *testing.T) {
	// Two keypresses back to back in one stream; each decode consumes
	// exactly one of them.
	r := &scriptReader{events: bytesScript("\x1b[Ab")}
	k1, err := ReadKey(r)
	if err != nil || k1 != keyArrowUp {
		t.Fatalf("first key = %d, %v; want arrow up", k1, err)
	}
	k2, err := ReadKey(r)
	if err != nil || k2 != Key('b') {
		t.Fatalf("second key = %d, %v; want 'b'", k2, err)
	}
}
