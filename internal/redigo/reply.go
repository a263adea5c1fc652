package redigo

import (
	"strconv"
)

type replyKind uint8

const (
	simpleReply replyKind = iota
	bulkReply
	nullReply
)

var (
	crlf    = []byte("\r\n")
	nullEnc = []byte("$-1\r\n")
)

// Reply is the result of one command, encoded lazily with AppendTo.
type Reply struct {
	kind    replyKind
	payload []byte
}

// NewSimpleReply must only carry text without CR or LF, such as PONG or OK.
func NewSimpleReply(text string) Reply {
	return Reply{kind: simpleReply, payload: []byte(text)}
}

func NewBulkReply(value []byte) Reply {
	return Reply{kind: bulkReply, payload: value}
}

func NewNullReply() Reply {
	return Reply{kind: nullReply}
}

var (
	pongReply = NewSimpleReply("PONG")
	okReply   = NewSimpleReply("OK")
)

// AppendTo appends the RESP encoding of the reply to dst.
func (reply Reply) AppendTo(dst []byte) []byte {
	switch reply.kind {
	case simpleReply:
		dst = append(dst, '+')
		dst = append(dst, reply.payload...)
		return append(dst, crlf...)
	case bulkReply:
		dst = append(dst, bulkPrefix)
		dst = strconv.AppendInt(dst, int64(len(reply.payload)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, reply.payload...)
		return append(dst, crlf...)
	default:
		return append(dst, nullEnc...)
	}
}

func (reply Reply) Bytes() []byte {
	return reply.AppendTo(nil)
}

func (reply Reply) String() string {
	return string(reply.Bytes())
}
