package fetch

import "io"

// limitedReader wraps an io.Reader and fails once more than limit bytes
// have been produced. Unlike io.LimitReader it reports the overflow as an
// error instead of silently truncating, so an oversized schema document is
// rejected rather than half-parsed.
type limitedReader struct {
	r     io.Reader
	n     int64
	limit int64
	read  int64
	eof   bool
}

func newLimitedReader(r io.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, n: limit, limit: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.eof {
		return 0, io.EOF
	}
	if l.n <= 0 {
		return 0, &SizeLimitExceededError{Limit: l.limit, Read: l.read}
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	l.read += int64(n)

	if l.n == 0 && err == nil {
		// At the limit exactly; probe one byte to tell a full read from an
		// oversized one.
		var probe [1]byte
		extra, probeErr := l.r.Read(probe[:])
		if extra > 0 {
			return n, &SizeLimitExceededError{Limit: l.limit, Read: l.read + 1}
		}
		if probeErr == io.EOF {
			l.eof = true
			return n, nil
		}
		if probeErr != nil {
			return n, probeErr
		}
	}
	if err == io.EOF {
		l.eof = true
	}
	return n, err
}
