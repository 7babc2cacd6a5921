package canon

import "golang.org/x/text/unicode/norm"

// NormalizeText returns s in Unicode Normalization Form C.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
