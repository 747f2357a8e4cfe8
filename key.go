package tilo

// Key is one logical keypress. Plain bytes pass through as their own value;
// keys that arrive as multi-byte escape sequences get codes above 0xFF.
// KeyNone means a poll produced nothing usable (timeout with no data, or an
// escape sequence we don't recognize).
type Key int

const KeyNone Key = -1

const (
	ctrlC        = 3
	ctrlF        = 6
	ctrlH        = 8
	keyTab       = 9
	ctrlL        = 12
	keyEnter     = 13
	ctrlQ        = 17
	ctrlS        = 19
	keyEsc       = 27
	keyBackspace = 127

	keyArrowLeft  Key = 1000
	keyArrowRight Key = 1001
	keyArrowUp    Key = 1002
	keyArrowDown  Key = 1003
	keyDel        Key = 1004
	keyHome       Key = 1005
	keyEnd        Key = 1006
	keyPageUp     Key = 1007
	keyPageDown   Key = 1008
)

// ByteReader is the input contract the decoder needs: a single-byte read
// bounded by a short timeout. ok is false when the timeout expired with no
// data, which is how a lone Escape keypress is told apart from the start of
// an escape sequence.
type ByteReader interface {
	ReadByte() (b byte, ok bool, err error)
}

// readByteBlocking polls r until a byte arrives.
func readByteBlocking(r ByteReader) (byte, error) {
	for {
		b, ok, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if ok {
			return b, nil
		}
	}
}

// ReadKey blocks until one keypress has been decoded. Unrecognized escape
// sequences yield KeyNone rather than an error; the caller just polls again.
func ReadKey(r ByteReader) (Key, error) {
	b, err := readByteBlocking(r)
	if err != nil {
		return KeyNone, err
	}
	if b != keyEsc {
		return Key(b), nil
	}

	// Either a lone Escape keypress or the start of a sequence. One
	// timeout-bounded poll decides which.
	b, ok, err := r.ReadByte()
	if err != nil {
		return KeyNone, err
	}
	if !ok {
		return keyEsc, nil
	}
	switch b {
	case '[':
		return readCSI(r)
	case 'O':
		return readSS3(r)
	default:
		return KeyNone, nil // invalid escape
	}
}

// readCSI accumulates sequence bytes until a final byte in [0x40, 0x7E]
// arrives. A timeout mid-sequence means this wasn't a real escape sequence
// after all; degrade to a lone Escape rather than hang.
func readCSI(r ByteReader) (Key, error) {
	var seq []byte
	for {
		b, ok, err := r.ReadByte()
		if err != nil {
			return KeyNone, err
		}
		if !ok {
			return keyEsc, nil
		}
		seq = append(seq, b)
		if b >= 0x40 && b <= 0x7E {
			break
		}
	}

	switch string(seq) {
	case "3~":
		return keyDel, nil
	case "5~":
		return keyPageUp, nil
	case "6~":
		return keyPageDown, nil
	case "A":
		return keyArrowUp, nil
	case "B":
		return keyArrowDown, nil
	case "C":
		return keyArrowRight, nil
	case "D":
		return keyArrowLeft, nil
	case "H":
		return keyHome, nil
	case "F":
		return keyEnd, nil
	}
	return KeyNone, nil
}

// readSS3 reads the single byte that follows ESC O.
func readSS3(r ByteReader) (Key, error) {
	b, ok, err := r.ReadByte()
	if err != nil {
		return KeyNone, err
	}
	if !ok {
		return keyEsc, nil
	}
	switch b {
	case 'H':
		return keyHome, nil
	case 'F':
		return keyEnd, nil
	}
	return KeyNone, nil
}
