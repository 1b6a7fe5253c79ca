package report

import "strings"

// lookback bounds how many lines Locate searches backwards.
const lookback = 5

// Locate finds token in the lines ending at index from (0-based), searching
// backwards over recent lines. It returns the 1-based line and column.
func Locate(lines []string, token string, from int) (line, column int, ok bool) {
	if token == "" || len(lines) == 0 {
		return 0, 0, false
	}
	if from >= len(lines) {
		from = len(lines) - 1
	}
	for i := from; i >= 0 && i > from-lookback; i-- {
		if col := indexWord(lines[i], token); col >= 0 {
			return i + 1, col + 1, true
		}
	}
	return 0, 0, false
}

// Column returns the 1-based column of token within line, or 0.
func Column(line, token string) int {
	if token == "" {
		return 0
	}
	return indexWord(line, token) + 1
}

// LineIndex maps a context string back to the 0-based index of the first
// line containing it, or -1.
func LineIndex(lines []string, context string) int {
	context = strings.TrimSpace(context)
	if context == "" {
		return -1
	}
	for i, l := range lines {
		if strings.Contains(l, context) {
			return i
		}
	}
	return -1
}

// indexWord prefers an occurrence of token that is not part of a longer
// identifier, falling back to the first plain occurrence.
func indexWord(s, token string) int {
	first := strings.Index(s, token)
	if first < 0 {
		return -1
	}
	for off := first; off >= 0; {
		end := off + len(token)
		before := off == 0 || !isWordByte(s[off-1])
		after := end >= len(s) || !isWordByte(s[end])
		if before && after {
			return off
		}
		next := strings.Index(s[off+1:], token)
		if next < 0 {
			break
		}
		off += next + 1
	}
	return first
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Excerpt renders the source line a diagnostic points at, with a caret under
// its column. Diagnostics without a line fall back to the first quoted
// fragment of their message. It returns "" when no line matches.
func Excerpt(lines []string, d Diagnostic) string {
	idx := d.Line - 1
	if d.Line <= 0 {
		idx = LineIndex(lines, quoted(d.Message))
	}
	if idx < 0 || idx >= len(lines) {
		return ""
	}

	var b strings.Builder
	b.WriteString("    " + lines[idx] + "\n")
	if d.Line > 0 && d.Column > 0 {
		b.WriteString("    " + strings.Repeat(" ", d.Column-1) + "^\n")
	}
	return b.String()
}

func quoted(msg string) string {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
