package errors

import "errors"

// ErrorIncompleteFrame is not a failure: the buffer holds a valid prefix
// of a request and more bytes are needed.
var ErrorIncompleteFrame = errors.New("frame.incomplete")

// ErrorProtocol is satisfied by every error that must close the connection
// without a reply.
var ErrorProtocol = errors.New("protocol.error")

var ErrorUnexpectedType = protocolError("protocol.unexpectedType")
var ErrorInvalidLength = protocolError("protocol.invalidLength")
var ErrorLengthExceeded = protocolError("protocol.lengthExceeded")
var ErrorMissingCRLF = protocolError("protocol.missingCRLF")
var ErrorEmptyCommand = protocolError("protocol.emptyCommand")
var ErrorUnknownCommand = protocolError("protocol.unknownCommand")
var ErrorWrongArgumentCount = protocolError("protocol.wrongArgumentCount")
var ErrorInvalidOption = protocolError("protocol.invalidOption")
var ErrorInvalidExpiry = protocolError("protocol.invalidExpiry")

type kindError struct {
	message string
}

func protocolError(message string) error {
	return &kindError{message: message}
}

func (e *kindError) Error() string {
	return e.message
}

func (e *kindError) Is(target error) bool {
	return target == ErrorProtocol
}

var ErrorKeyNotFound = errors.New("key.notFound")
var ErrorKeyExpired = errors.New("key.expired")
