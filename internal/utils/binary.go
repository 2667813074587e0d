package utils

import (
	"bytes"
	"unicode/utf8"
)

// IsText reports whether data can be emitted into the artifact verbatim.
// Text is valid UTF-8 without NUL bytes; the empty slice is text.
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !utf8.Valid(data) {
		return false
	}
	return bytes.IndexByte(data, 0) < 0
}
