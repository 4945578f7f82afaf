package failure

import (
	"regexp"
	"strings"
)

// exitStatusLine is the trailer `go run` prints after a failed program.
var exitStatusLine = regexp.MustCompile(`^exit status \d+$`)

// logPrefix is the date and time the standard log package puts first.
var logPrefix = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(\.\d+)? `)

const (
	panicPrefix      = "panic: "
	fatalPrefix      = "fatal error: "
	recoveredSuffix  = " [recovered]"
	maxCapturedBytes = 1 << 20
)

// Extract picks the failure description out of a failed program's output.
// A Go runtime panic or fatal error is found by its prefix; otherwise the
// last non-blank line is used, which is where tracebacks end with the
// "<Category>: <message>" line. "exit status N" trailers are skipped and a
// log timestamp prefix is dropped. Extract returns "" for blank output.
func Extract(output string) string {
	var last string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, " \t\r")
		switch {
		case strings.HasPrefix(line, panicPrefix):
			line = strings.TrimPrefix(line, panicPrefix)
			return strings.TrimSuffix(line, recoveredSuffix)
		case strings.HasPrefix(line, fatalPrefix):
			return line
		default:
			if trimmed := strings.TrimSpace(line); trimmed != "" && !exitStatusLine.MatchString(trimmed) {
				last = trimmed
			}
		}
	}
	return logPrefix.ReplaceAllString(last, "")
}

// Tail keeps at most the last n bytes written to it. Captured output is only
// needed for its end.
type Tail struct {
	buf []byte
	max int
}

func NewTail(max int) *Tail {
	if max <= 0 {
		max = maxCapturedBytes
	}
	return &Tail{max: max}
}

func (t *Tail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *Tail) String() string {
	return string(t.buf)
}
