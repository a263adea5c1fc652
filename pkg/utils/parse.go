package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrNotDecimal = errors.New("not a decimal number")
var ErrOverflow = errors.New("number overflows uint64")

// Converts a run of ASCII digits to uint64
// Signs, spaces and empty input are rejected
func FromDigitsToUint64(digits []byte) (uint64, error) {
	if len(digits) == 0 {
		return 0, ErrNotDecimal
	}

	var value uint64
	for _, digit := range digits {
		if digit < '0' || digit > '9' {
			return 0, ErrNotDecimal
		}
		next := uint64(digit - '0')
		if value > (math.MaxUint64-next)/10 {
			return 0, ErrOverflow
		}
		value = value*10 + next
	}
	return value, nil
}

// Renders raw bytes for log output, escaping control and invalid UTF-8 bytes
func Printable(value []byte) string {
	var builder strings.Builder
	builder.Grow(len(value))

	for len(value) > 0 {
		r, size := utf8.DecodeRune(value)
		switch {
		case r == utf8.RuneError && size <= 1:
			builder.WriteString(`\x`)
			builder.WriteString(strconv.FormatUint(uint64(value[0])>>4, 16))
			builder.WriteString(strconv.FormatUint(uint64(value[0])&0xf, 16))
		case r == '\\':
			builder.WriteString(`\\`)
		case strconv.IsPrint(r):
			builder.WriteRune(r)
		default:
			quoted := strconv.QuoteRune(r)
			builder.WriteString(quoted[1 : len(quoted)-1])
		}
		value = value[size:]
	}
	return builder.String()
}
