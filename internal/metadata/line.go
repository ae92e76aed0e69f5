package metadata

import "strings"

const (
	lineMarker    = "!!!"
	lineSeparator = "!!"
)

// ParseLine parses a single metadata line. Surrounding whitespace is ignored.
// ok is false when the line does not carry the `!!!` markers or yields fewer
// than three fields; parts beyond the third are discarded.
func ParseLine(line string) (date, time, author string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, lineMarker) || !strings.HasSuffix(line, lineMarker) {
		return "", "", "", false
	}

	inner := ""
	if len(line) >= 2*len(lineMarker) {
		inner = line[len(lineMarker) : len(line)-len(lineMarker)]
	}

	parts := strings.Split(inner, lineSeparator)
	if len(parts) < 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// ParseLines applies the legacy contract to the lines of a file: the first
// line is inspected for metadata and always consumed; the body is the
// remaining lines concatenated unmodified. Lines are expected to keep their
// terminators, as returned by SplitLines.
func ParseLines(lines []string) (date, time, author, body string) {
	if len(lines) == 0 {
		return "", "", "", ""
	}
	date, time, author, _ = ParseLine(lines[0])
	return date, time, author, strings.Join(lines[1:], "")
}

// SplitLines splits content after each "\n", keeping the terminators. An
// empty input yields no lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
