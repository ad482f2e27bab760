package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// lineReader owns the input for the lifetime of the Console. A single
// goroutine scans lines and hands them over one at a time, so a read
// abandoned on context cancellation leaves the next line for the next read.
type lineReader struct {
	r     io.Reader
	once  sync.Once
	lines chan line
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, lines: make(chan line)}
}

func (lr *lineReader) start() {
	go func() {
		sc := bufio.NewScanner(lr.r)
		for sc.Scan() {
			lr.lines <- line{text: strings.TrimRight(sc.Text(), "\r")}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		// Every later read observes the terminal error.
		for {
			lr.lines <- line{err: err}
		}
	}()
}

// ReadLine returns the next line without its terminator.
func (lr *lineReader) ReadLine(ctx context.Context) (string, error) {
	lr.once.Do(lr.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-lr.lines:
		return l.text, l.err
	}
}
