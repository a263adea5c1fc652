package redigo

import (
	"bytes"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"redigolite/internal/redigo/errors"
	"redigolite/internal/redigo/types"
	"redigolite/pkg/utils"
)

const (
	arrayPrefix = '*'
	bulkPrefix  = '$'

	// maxLengthDigits is the widest decimal uint64.
	maxLengthDigits = 20
)

// Decoder turns the head of a connection buffer into a Command.
// It keeps per-connection case-folding state and must not be shared
// between goroutines.
type Decoder struct {
	maxArrayLength uint64
	maxBulkLength  uint64
	upper          cases.Caser
}

func NewDecoder(maxArrayLength, maxBulkLength uint64) *Decoder {
	return &Decoder{
		maxArrayLength: maxArrayLength,
		maxBulkLength:  maxBulkLength,
		upper:          cases.Upper(language.Und),
	}
}

// Decode parses one request from the start of buf and returns it with the
// number of bytes consumed. errors.ErrorIncompleteFrame means buf holds a
// valid prefix and nothing was consumed; any other error is a protocol
// error.
func (decoder *Decoder) Decode(buf []byte) (types.Command, int, error) {
	elements, consumed, err := decoder.decodeArray(buf)
	if err != nil {
		return types.Command{}, 0, err
	}

	command, err := decoder.recognize(elements)
	if err != nil {
		return types.Command{}, 0, err
	}

	return command, consumed, nil
}

func (decoder *Decoder) decodeArray(buf []byte) ([][]byte, int, error) {
	count, position, err := readLength(buf, 0, arrayPrefix, decoder.maxArrayLength)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, fmt.Errorf("%w: array of %d elements", errors.ErrorEmptyCommand, count)
	}

	// count is bounded by maxArrayLength but each element still needs bytes
	// on the wire, so never preallocate more than the buffer could hold.
	elements := make([][]byte, 0, min(count, uint64(len(buf)/4)+1))
	for i := uint64(0); i < count; i++ {
		var element []byte
		element, position, err = decoder.readBulk(buf, position)
		if err != nil {
			return nil, 0, err
		}
		elements = append(elements, element)
	}

	return elements, position, nil
}

func (decoder *Decoder) readBulk(buf []byte, position int) ([]byte, int, error) {
	length, position, err := readLength(buf, position, bulkPrefix, decoder.maxBulkLength)
	if err != nil {
		return nil, 0, err
	}

	remaining := uint64(len(buf) - position)
	if remaining < length || remaining-length < 2 {
		return nil, 0, errors.ErrorIncompleteFrame
	}

	end := position + int(length)
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return nil, 0, fmt.Errorf("%w: after %d byte bulk at offset %d", errors.ErrorMissingCRLF, length, position)
	}

	return buf[position:end], end + 2, nil
}

// readLength parses "<prefix><digits>\r\n" at position and returns the
// value with the offset just past the CRLF.
func readLength(buf []byte, position int, prefix byte, limit uint64) (uint64, int, error) {
	if position >= len(buf) {
		return 0, 0, errors.ErrorIncompleteFrame
	}
	if buf[position] != prefix {
		return 0, 0, fmt.Errorf("%w: expected %q, got %q at offset %d", errors.ErrorUnexpectedType, prefix, buf[position], position)
	}

	start := position + 1
	cursor := start
	for ; cursor < len(buf) && buf[cursor] != '\r'; cursor++ {
		if buf[cursor] < '0' || buf[cursor] > '9' {
			return 0, 0, fmt.Errorf("%w: %q at offset %d", errors.ErrorInvalidLength, buf[cursor], cursor)
		}
		if cursor-start >= maxLengthDigits {
			return 0, 0, fmt.Errorf("%w: more than %d digits", errors.ErrorInvalidLength, maxLengthDigits)
		}
	}
	if cursor+1 >= len(buf) {
		return 0, 0, errors.ErrorIncompleteFrame
	}
	if buf[cursor+1] != '\n' {
		return 0, 0, fmt.Errorf("%w: at offset %d", errors.ErrorMissingCRLF, cursor)
	}

	value, err := utils.FromDigitsToUint64(buf[start:cursor])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errors.ErrorInvalidLength, err)
	}
	if value > limit {
		return 0, 0, fmt.Errorf("%w: %d > %d", errors.ErrorLengthExceeded, value, limit)
	}

	return value, cursor + 2, nil
}

func (decoder *Decoder) recognize(elements [][]byte) (types.Command, error) {
	name := decoder.word(elements[0])
	operands := elements[1:]

	switch types.CommandName(name) {
	case types.PING:
		return types.NewPing(), nil
	case types.ECHO:
		if len(operands) != 1 {
			return types.Command{}, wrongArgumentCount(name, len(operands))
		}
		return types.NewEcho(bytes.Clone(operands[0])), nil
	case types.GET:
		if len(operands) != 1 {
			return types.Command{}, wrongArgumentCount(name, len(operands))
		}
		return types.NewGet(bytes.Clone(operands[0])), nil
	case types.SET:
		return decoder.recognizeSet(operands)
	}

	return types.Command{}, fmt.Errorf("%w: %q", errors.ErrorUnknownCommand, utils.Printable(elements[0]))
}

func (decoder *Decoder) recognizeSet(operands [][]byte) (types.Command, error) {
	if len(operands) < 2 {
		return types.Command{}, wrongArgumentCount(string(types.SET), len(operands))
	}

	key, value, options := operands[0], operands[1], operands[2:]

	var px *uint64
	switch {
	case len(options) == 0:
	case len(options) == 2 && decoder.word(options[0]) == "PX":
		milliseconds, err := utils.FromDigitsToUint64(options[1])
		if err != nil {
			return types.Command{}, fmt.Errorf("%w: %q: %v", errors.ErrorInvalidExpiry, utils.Printable(options[1]), err)
		}
		px = &milliseconds
	default:
		return types.Command{}, fmt.Errorf("%w: %d trailing operands starting with %q", errors.ErrorInvalidOption, len(options), utils.Printable(options[0]))
	}

	return types.NewSet(bytes.Clone(key), bytes.Clone(value), px), nil
}

// word upper-cases an ASCII command word. Non-ASCII input never matches a
// keyword, so it is returned unchanged.
func (decoder *Decoder) word(raw []byte) string {
	for _, b := range raw {
		if b >= 0x80 {
			return string(raw)
		}
	}
	return decoder.upper.String(string(raw))
}

func wrongArgumentCount(name string, got int) error {
	return fmt.Errorf("%w: %d operands for %s", errors.ErrorWrongArgumentCount, got, name)
}
