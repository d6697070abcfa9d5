package frame

import (
	"bytes"
	"errors"
	"io"
)

const readChunk = 4096

// Scanner reads frames from a byte stream, resynchronising on the sync
// bytes after noise or corrupted frames.
type Scanner struct {
	r     io.Reader
	buf   []byte
	frame Frame
	err   error

	// Skipped counts bytes discarded while hunting for sync.
	Skipped int
	// Corrupt counts frames dropped for a bad CRC or length.
	Corrupt int
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, buf: make([]byte, 0, 2*readChunk)}
}

// Scan advances to the next valid frame. It returns false at the end of
// the stream or on a read error; see Err.
func (s *Scanner) Scan() bool {
	for {
		if s.next() {
			return true
		}
		if s.err != nil {
			return false
		}
		if len(s.buf) == cap(s.buf) {
			s.buf = append(make([]byte, 0, 2*cap(s.buf)), s.buf...)
		}
		n, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
		s.buf = s.buf[:len(s.buf)+n]
		if err != nil {
			s.err = err
		}
	}
}

// next decodes from the buffered bytes, discarding garbage.
func (s *Scanner) next() bool {
	for len(s.buf) > 0 {
		i := bytes.IndexByte(s.buf, Sync0)
		if i < 0 {
			s.Skipped += len(s.buf)
			s.buf = s.buf[:0]
			return false
		}
		if i > 0 {
			s.Skipped += i
			s.consume(i)
		}
		f, n, err := Decode(s.buf)
		switch {
		case err == nil:
			s.frame = f
			s.consume(n)
			return true
		case errors.Is(err, ErrShort):
			return false
		case errors.Is(err, ErrSync):
			s.Skipped++
			s.consume(1)
		default:
			s.Corrupt++
			s.consume(1)
		}
	}
	return false
}

func (s *Scanner) consume(n int) {
	s.buf = s.buf[:copy(s.buf, s.buf[n:])]
}

func (s *Scanner) Frame() Frame { return s.frame }

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
