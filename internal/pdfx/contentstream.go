package pdfx

import (
	"strconv"
	"strings"
)

// textLine is one recovered line of text from a page content stream, in
// the order operators were encountered.
type textLine struct {
	Text string
}

// tokenizeContentStream walks a decompressed PDF page content stream and
// recovers the strings shown by Tj/TJ/' text-showing operators, split into
// lines on Td/TD/T*/Tm position-move operators (a new line whenever the
// text-positioning operator moves the cursor, which is how pdfcpu's
// extracted content naturally lays paragraphs out one operator-run per
// line).
//
// This is hand-written rather than delegated to a library: pdfcpu exposes
// page/image-level extraction but no plain-text-with-coordinates call, so
// walking the recovered content-stream operators is unavoidable glue code
// (see DESIGN.md).
func tokenizeContentStream(raw []byte) []textLine {
	var lines []textLine
	var cur strings.Builder

	flush := func() {
		t := strings.TrimSpace(cur.String())
		if t != "" {
			lines = append(lines, textLine{Text: t})
		}
		cur.Reset()
	}

	s := string(raw)
	i := 0
	n := len(s)

	for i < n {
		c := s[i]
		switch {
		case c == '(':
			// Literal string: (...), with \) \( \\ escapes.
			j := i + 1
			var sb strings.Builder
			depth := 1
			for j < n && depth > 0 {
				switch s[j] {
				case '\\':
					if j+1 < n {
						sb.WriteByte(decodeEscape(s[j+1]))
						j += 2
						continue
					}
				case '(':
					depth++
				case ')':
					depth--
					if depth == 0 {
						j++
						continue
					}
				}
				if depth > 0 {
					sb.WriteByte(s[j])
				}
				j++
			}
			cur.WriteString(sb.String())
			i = j

		case c == '<':
			// Hex string: <...> - skip, rarely carries clause prose.
			j := strings.IndexByte(s[i:], '>')
			if j < 0 {
				i = n
			} else {
				i += j + 1
			}

		case strings.HasPrefix(s[i:], "Td") || strings.HasPrefix(s[i:], "TD") ||
			strings.HasPrefix(s[i:], "T*") || strings.HasPrefix(s[i:], "Tm"):
			flush()
			i += 2

		case strings.HasPrefix(s[i:], "Tj") || strings.HasPrefix(s[i:], "TJ") || strings.HasPrefix(s[i:], "'"):
			cur.WriteByte(' ')
			i++

		case strings.HasPrefix(s[i:], "BT") || strings.HasPrefix(s[i:], "ET"):
			flush()
			i += 2

		default:
			i++
		}
	}
	flush()

	return mergeTokenSpacing(lines)
}

func decodeEscape(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return b
	}
}

// mergeTokenSpacing collapses runs of whitespace left by TJ array kerning
// numbers that leaked into the text builder.
func mergeTokenSpacing(lines []textLine) []textLine {
	out := make([]textLine, 0, len(lines))
	for _, ln := range lines {
		fields := strings.Fields(stripNumericNoise(ln.Text))
		t := strings.Join(fields, " ")
		if t != "" {
			out = append(out, textLine{Text: t})
		}
	}
	return out
}

// stripNumericNoise drops bare numeric tokens (TJ kerning adjustments that
// sit between string runs) while preserving numerics embedded in words
// (e.g. "48 hours", "$10,000,000").
func stripNumericNoise(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil && len(f) <= 3 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func isBlankLine(s string) bool {
	return strings.TrimSpace(s) == ""
}
