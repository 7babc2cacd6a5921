package program

import "strings"

// Format renders transitions as program text, preceded by header lines.
// Missing header lines are padded with empty lines so the output always
// parses with the same header size.
func Format(header []string, headerLines int, transitions []Transition) string {
	var b strings.Builder
	for i := 0; i < headerLines; i++ {
		if i < len(header) {
			b.WriteString(header[i])
		}
		b.WriteByte('\n')
	}
	for _, t := range transitions {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}
