package redigo

import (
	goerrors "errors"
	"io"
	"net"

	"redigolite/internal/redigo/errors"
)

func (server *Server) handleConnection(conn net.Conn) {
	defer server.connections.Done()
	defer server.forget(conn)
	defer conn.Close()

	log := server.logger.With("remote", conn.RemoteAddr().String())

	server.metrics.connectionOpened()
	defer server.metrics.connectionClosed()
	log.Debug("connection opened")

	err := server.serveConnection(conn)
	switch {
	case goerrors.Is(err, io.EOF):
		log.Debug("connection closed by peer")
	case goerrors.Is(err, errors.ErrorProtocol):
		server.metrics.protocolError()
		log.Warn("closing connection on protocol error", "error", err)
	default:
		log.Debug("connection dropped", "error", err)
	}
}

// serveConnection runs the read, decode, dispatch, write loop until the
// peer goes away or sends something that is not a supported request.
// Replies to every request already in the buffer are written in one batch
// before the next read, so replies keep request order.
func (server *Server) serveConnection(conn io.ReadWriter) error {
	decoder := NewDecoder(server.maxArrayLength, server.maxBulkLength)

	var (
		buffer  connectionBuffer
		replies []byte
	)

	for {
		command, consumed, err := decoder.Decode(buffer.unread())
		if err == nil {
			reply, dispatchErr := server.dispatcher.Dispatch(command)
			if dispatchErr != nil {
				return server.flushThen(conn, replies, dispatchErr)
			}
			replies = reply.AppendTo(replies)
			buffer.consume(consumed)
			continue
		}
		if !goerrors.Is(err, errors.ErrorIncompleteFrame) {
			return server.flushThen(conn, replies, err)
		}

		if len(replies) > 0 {
			if _, err := conn.Write(replies); err != nil {
				return err
			}
			replies = replies[:0]
			if cap(replies) > maxRetainedBuffer {
				replies = nil
			}
		}

		n, err := buffer.fill(conn)
		if n == 0 && err != nil {
			return err
		}
	}
}

// flushThen writes replies owed to requests that preceded a failing one,
// then returns cause.
func (server *Server) flushThen(conn io.Writer, replies []byte, cause error) error {
	if len(replies) > 0 {
		if _, err := conn.Write(replies); err != nil {
			return err
		}
	}
	return cause
}
