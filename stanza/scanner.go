package stanza

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBuffer is the longest single line the Scanner's bufio.Scanner will
// accept, guarding against one runaway line from a hostile or corrupt feed.
// It bounds each line, not the accumulated value of a field's continuation
// lines.
const maxLineBuffer = 1 << 20

// Scanner reads successive stanzas from a control-file-formatted stream.
// Each Scanner holds its own buffered reader and line-pushback state, so
// multiple Scanners over different streams (or the same stream reopened)
// never share state, unlike a package-level parser with static globals.
type Scanner struct {
	sc          *bufio.Scanner
	pending     string
	havePending bool
}

// NewScanner returns a Scanner reading stanzas from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBuffer)
	return &Scanner{sc: sc}
}

func (s *Scanner) nextLine() (string, bool) {
	if s.havePending {
		s.havePending = false
		return s.pending, true
	}
	if s.sc.Scan() {
		return s.sc.Text(), true
	}
	return "", false
}

// Next reads and returns the next stanza. ok is false once the stream is
// exhausted with no further stanza to return; a nil error from the
// underlying reader simply means EOF, matching bufio.Scanner's own
// convention. Blank lines between stanzas (including a run of several) are
// skipped; a stanza ends at the next blank line or at EOF.
func (s *Scanner) Next() (Record, bool) {
	rec := newRecord()
	var field string
	var value strings.Builder
	haveField := false
	any := false

	flush := func() {
		if haveField {
			rec.set(field, value.String())
		}
		haveField = false
		value.Reset()
	}

	for {
		line, ok := s.nextLine()
		if !ok {
			flush()
			return rec, any
		}
		if strings.TrimSpace(line) == "" {
			if !any {
				continue
			}
			flush()
			return rec, true
		}
		any = true

		if (line[0] == ' ' || line[0] == '\t') && haveField {
			cont := strings.TrimLeft(line, " \t")
			if cont == "." {
				cont = ""
			}
			value.WriteByte('\n')
			value.WriteString(cont)
			continue
		}

		flush()
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			// Not a valid "Field: value" line and not a continuation of one
			// either; skip it rather than failing the whole stanza, matching
			// the leniency of a line-oriented control file reader.
			continue
		}
		field = strings.TrimSpace(line[:idx])
		value.WriteString(strings.TrimSpace(line[idx+1:]))
		haveField = true
	}
}

// Err returns the first non-EOF error encountered by the underlying
// reader, if any.
func (s *Scanner) Err() error {
	return s.sc.Err()
}
