package utils

import (
	"strconv"
	"strings"
)

var sizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count for log output, e.g. 512b, 1.5kb, 20mb.
// Values under ten keep one decimal; negative counts render as 0b.
func FormatFileSize(bytes int64) string {
	if bytes < 1024 {
		return strconv.FormatInt(max(bytes, 0), 10) + sizeUnits[0]
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(sizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0")
	return formatted + sizeUnits[unitIndex]
}
