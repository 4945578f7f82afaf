// Package normalizer reduces a failure message to a generic search query by
// removing the parts that are specific to one occurrence: object addresses,
// quoted names, line/column positions and URLs.
//
// Every pass is a single left-to-right scan that copies the kept text into a
// new buffer, so each one runs in linear time and always terminates.
package normalizer

import "strings"

const (
	objectMarker    = " object at "
	lineMarker      = " line "
	columnMarker    = " column "
	schemeSeparator = "://"

	// minQuotedSpan is the shortest quoted span, quotes included, that is
	// treated as a name. Shorter pairs such as '' end the scan.
	minQuotedSpan = 4
)

// Normalize runs the four passes in order. It never fails.
func Normalize(msg string) string {
	return StripURLs(StripLineCol(StripNames(StripObjects(msg))))
}

// StripObjects removes bracketed default object representations such as
// <__main__.AClass object at 0x7f3082bb2fd0>, together with every bracketed
// span enclosing one, so <bound method Foo.bar of <__main__.Foo object at
// 0x1>> goes as a whole. Other bracketed spans are kept. When the enclosing
// '<' is never closed only the inner representation is removed.
func StripObjects(msg string) string {
	type span struct{ start, end int }
	type level struct {
		open    int
		hit     bool
		pending []span
	}

	var (
		stack   []level
		removed []span
	)
	keep := func(spans ...span) {
		if len(stack) == 0 {
			removed = append(removed, spans...)
			return
		}
		top := &stack[len(stack)-1]
		top.pending = append(top.pending, spans...)
	}

	for i := 0; i < len(msg); i++ {
		switch msg[i] {
		case '<':
			stack = append(stack, level{open: i})
		case '>':
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !top.hit {
				keep(top.pending...)
				continue
			}
			if len(stack) > 0 {
				stack[len(stack)-1].hit = true
			}
			keep(span{top.open, i + 1})
		default:
			if len(stack) > 0 && strings.HasPrefix(msg[i:], objectMarker) {
				stack[len(stack)-1].hit = true
			}
		}
	}
	for _, l := range stack {
		removed = append(removed, l.pending...)
	}

	var b strings.Builder
	b.Grow(len(msg))
	last := 0
	for _, sp := range removed {
		b.WriteString(msg[last:sp.start])
		last = sp.end
	}
	b.WriteString(msg[last:])
	return b.String()
}

// StripNames removes names enclosed in double quotes, then in single quotes.
//
//	FATAL: password authentication failed for user "bora"
//
// becomes
//
//	FATAL: password authentication failed for user
func StripNames(msg string) string {
	return stripQuoted(stripQuoted(msg, '"'), '\'')
}

func stripQuoted(msg string, quote byte) string {
	var b strings.Builder
	b.Grow(len(msg))

	pos := 0
	for {
		start := strings.IndexByte(msg[pos:], quote)
		if start < 0 {
			break
		}
		start += pos
		end := strings.IndexByte(msg[start+1:], quote)
		if end < 0 {
			break
		}
		end += start + 1
		if end-start+1 < minQuotedSpan {
			break
		}
		b.WriteString(msg[pos:start])
		pos = end + 1
	}
	b.WriteString(msg[pos:])
	return b.String()
}

// StripLineCol cuts the message at " line " when a " column " follows it.
//
//	Expecting property name enclosed in double quotes: line 1 column 2 (char 1)
//
// becomes
//
//	Expecting property name enclosed in double quotes:
func StripLineCol(msg string) string {
	line := strings.Index(msg, lineMarker)
	if line < 0 {
		return msg
	}
	if column := strings.Index(msg, columnMarker); column >= line {
		return msg[:line]
	}
	return msg
}

// StripURLs removes every space-delimited token containing "://". The spaces
// around a removed token are kept.
func StripURLs(msg string) string {
	var b strings.Builder
	b.Grow(len(msg))

	last := 0
	for {
		sep := strings.Index(msg[last:], schemeSeparator)
		if sep < 0 {
			break
		}
		sep += last

		begin := last
		if sp := strings.LastIndexByte(msg[last:sep], ' '); sp >= 0 {
			begin = last + sp + 1
		}
		end := len(msg)
		if sp := strings.IndexByte(msg[sep:], ' '); sp >= 0 {
			end = sep + sp
		}

		b.WriteString(msg[last:begin])
		last = end
	}
	b.WriteString(msg[last:])
	return b.String()
}
