package redigo

import (
	goerrors "errors"
	"fmt"
	"log/slog"

	"redigolite/internal/redigo/errors"
	"redigolite/internal/redigo/types"
	"redigolite/pkg/utils"
)

// Dispatcher applies commands to the keyspace. It performs no I/O besides
// logging and is safe for concurrent use.
type Dispatcher struct {
	database *RedigoDB
	clock    Clock
	logger   *slog.Logger
	metrics  *Metrics
}

func NewDispatcher(database *RedigoDB, clock Clock, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		database: database,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Dispatch runs command against the keyspace and returns its reply.
// Time is sampled once so every step of the command sees the same now.
// The only error is ErrorUnknownCommand, for a Command not built by Decoder.
func (dispatcher *Dispatcher) Dispatch(command types.Command) (Reply, error) {
	now := dispatcher.clock.NowMillis()

	var reply Reply
	switch command.Name {
	case types.PING:
		reply = pongReply
	case types.ECHO:
		reply = NewBulkReply(command.Value)
	case types.SET:
		reply = dispatcher.handleSet(command, now)
	case types.GET:
		reply = dispatcher.handleGet(command, now)
	default:
		return Reply{}, fmt.Errorf("%w: %q", errors.ErrorUnknownCommand, command.Name)
	}

	dispatcher.metrics.commandProcessed(command.Name)
	return reply, nil
}

func (dispatcher *Dispatcher) handleSet(command types.Command, now int64) Reply {
	if command.Px == nil {
		dispatcher.database.Set(command.Key, command.Value, nil)
		dispatcher.logger.Debug("set", "key", utils.Printable(command.Key))
		return okReply
	}

	expiresAt := types.ExpiresAtFrom(now, *command.Px)
	dispatcher.database.Set(command.Key, command.Value, &expiresAt)
	dispatcher.logger.Debug("set", "key", utils.Printable(command.Key), "px", *command.Px, "expires_at", expiresAt)
	return okReply
}

func (dispatcher *Dispatcher) handleGet(command types.Command, now int64) Reply {
	entry, err := dispatcher.database.Get(command.Key, now)
	switch {
	case err == nil:
		return NewBulkReply(entry.Value)
	case goerrors.Is(err, errors.ErrorKeyExpired):
		dispatcher.metrics.keysExpired(expiredOnRead, 1)
		dispatcher.logger.Debug("key expired",
			"key", utils.Printable(command.Key),
			"expired_at", *entry.ExpiresAt,
			"now", now)
	}
	return NewNullReply()
}
