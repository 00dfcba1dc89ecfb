package jsonschema

import (
	"regexp"
	"strings"
)

// argLine matches "name: text" and "name (type): text".
var argLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)

// sectionHeader matches the start of the next doc section, e.g. "Returns:".
var sectionHeader = regexp.MustCompile(`^[A-Z][A-Za-z ]*:$`)

// ParseDocArgs extracts parameter descriptions from the "Args:" section of a
// Google-style doc string:
//
//	Read a file.
//
//	Args:
//	    path: File to read.
//	    limit (int): Maximum bytes,
//	        counted from the start.
//
//	Returns:
//	    The file contents.
//
// Indented continuation lines are joined onto the previous entry. The section
// ends at the next header or at a non-indented line.
func ParseDocArgs(doc string) map[string]string {
	out := make(map[string]string)

	inArgs := false
	argIndent := -1
	last := ""

	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if !inArgs {
			if strings.EqualFold(trimmed, "args:") {
				inArgs = true
				argIndent = -1
			}
			continue
		}

		if trimmed == "" {
			continue
		}
		if sectionHeader.MatchString(trimmed) || (indent == 0 && argIndent > 0) {
			inArgs = false
			last = ""
			continue
		}

		if argIndent < 0 {
			argIndent = indent
		}

		if indent <= argIndent {
			if m := argLine.FindStringSubmatch(trimmed); m != nil {
				last = m[1]
				out[last] = strings.TrimSpace(m[2])
				continue
			}
		}
		if last != "" {
			out[last] = strings.TrimSpace(out[last] + " " + trimmed)
		}
	}
	return out
}
