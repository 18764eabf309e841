package relay

import "unicode/utf8"

// utf8Carry holds back an incomplete trailing UTF-8 sequence so that a
// character split across two chunks is emitted whole.
type utf8Carry struct {
	pending []byte
}

// Feed returns the longest prefix of pending+p that does not end inside a
// multi-byte character and keeps the rest for the next call.
func (c *utf8Carry) Feed(p []byte) []byte {
	buf := p
	if len(c.pending) > 0 {
		buf = make([]byte, 0, len(c.pending)+len(p))
		buf = append(buf, c.pending...)
		buf = append(buf, p...)
	}

	n := completeLen(buf)
	c.pending = append(c.pending[:0], buf[n:]...)
	return buf[:n]
}

// Flush returns whatever is still held back, complete or not.
func (c *utf8Carry) Flush() []byte {
	if len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = nil
	return out
}

func completeLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax-1; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	// No rune start in the window: invalid bytes, pass them through.
	return len(b)
}
