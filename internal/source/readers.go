package source

// readers.go cleans file input before it reaches a decoder.
//
// Spreadsheet exports commonly carry a UTF-8 byte order mark and the odd
// byte in a legacy encoding. Both are handled while streaming so a source
// file is never held in memory twice:
//
//   - bomSkippingReader drops a leading 0xEF 0xBB 0xBF
//   - utf8Sanitizer replaces each invalid byte with '?'

import (
	"bufio"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanReader strips the BOM first, then sanitizes what remains.
func cleanReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkippingReader(r))
}

// bomSkippingReader skips a UTF-8 byte order mark at the start of the stream.
type bomSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{br: bufio.NewReader(r)}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil &&
			head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
			_, _ = r.br.Discard(len(utf8BOM))
		}
	}
	return r.br.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' in place. A multi-byte
// sequence split across two reads is held back until the rest arrives.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		// Too small to hold back a partial rune; read byte-sized chunks
		// through a scratch buffer.
		var buf [utf8.UTFMax]byte
		n, err := s.Read(buf[:])
		copied := copy(p, buf[:n])
		s.pending = append(buf[copied:n:n], s.pending...)
		return copied, err
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	return s.sanitize(p[:n], err != nil), err
}

// sanitize rewrites data in place and returns how many bytes are ready.
// Unless atEnd, an incomplete trailing rune is moved to pending.
func (s *utf8Sanitizer) sanitize(data []byte, atEnd bool) int {
	if !atEnd {
		if tail := partialRuneLen(data); tail > 0 {
			s.pending = append(s.pending, data[len(data)-tail:]...)
			data = data[:len(data)-tail]
		}
	}
	if utf8.Valid(data) {
		return len(data)
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		w += copy(data[w:], data[i:i+size])
		i += size
	}
	return w
}

// partialRuneLen returns the length of an unfinished multi-byte sequence at
// the end of data, or 0.
func partialRuneLen(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		b := data[len(data)-i]
		if utf8.RuneStart(b) {
			if b >= 0xC0 && sequenceLen(b) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

// sequenceLen is the encoded length announced by a leading byte.
func sequenceLen(b byte) int {
	switch {
	case b >= 0xF0:
		return 4
	case b >= 0xE0:
		return 3
	case b >= 0xC0:
		return 2
	default:
		return 1
	}
}
