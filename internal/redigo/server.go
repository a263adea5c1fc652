package redigo

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"redigolite/internal/logger"
)

const (
	DefaultMaxArrayLength uint64 = 1024 * 1024
	DefaultMaxBulkLength  uint64 = 512 * 1024 * 1024

	maxAcceptDelay = time.Second
)

// Server accepts client connections and serves each on its own goroutine
// against one shared keyspace.
type Server struct {
	database   *RedigoDB
	dispatcher *Dispatcher
	clock      Clock
	logger     *slog.Logger
	metrics    *Metrics

	maxArrayLength uint64
	maxBulkLength  uint64
	sweepInterval  time.Duration

	connections sync.WaitGroup
	activeMutex sync.Mutex
	active      map[net.Conn]struct{}
}

type Option func(*Server)

func WithClock(clock Clock) Option {
	return func(server *Server) {
		server.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(server *Server) {
		server.metrics = metrics
	}
}

// WithLimits bounds the array and bulk length prefixes a client may send.
func WithLimits(maxArrayLength, maxBulkLength uint64) Option {
	return func(server *Server) {
		server.maxArrayLength = maxArrayLength
		server.maxBulkLength = maxBulkLength
	}
}

// WithSweepInterval enables the background expiration sweep while serving.
func WithSweepInterval(interval time.Duration) Option {
	return func(server *Server) {
		server.sweepInterval = interval
	}
}

func NewServer(database *RedigoDB, options ...Option) *Server {
	server := &Server{
		database:       database,
		clock:          SystemClock{},
		logger:         logger.Discard(),
		maxArrayLength: DefaultMaxArrayLength,
		maxBulkLength:  DefaultMaxBulkLength,
		active:         make(map[net.Conn]struct{}),
	}
	for _, option := range options {
		option(server)
	}
	server.dispatcher = NewDispatcher(server.database, server.clock, server.logger, server.metrics)

	return server
}

func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx, listener)
}

// Serve accepts on listener until ctx is done, then closes the listener and
// every open connection and returns nil once all handlers have exited.
// Accept errors are logged and retried with a capped backoff.
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	if server.sweepInterval > 0 {
		go server.database.StartDataExpirationListener(ctx, server.sweepInterval, server.clock, server.onSweep)
	}

	server.logger.Info("server started", "addr", listener.Addr().String())

	var delay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				server.shutdown()
				return nil
			}
			if goerrors.Is(err, net.ErrClosed) {
				server.shutdown()
				return err
			}

			delay = min(max(2*delay, 5*time.Millisecond), maxAcceptDelay)
			server.logger.Error("accept failed", "error", err, "retry_in", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}

		delay = 0
		server.track(conn)
		server.connections.Add(1)
		go server.handleConnection(conn)
	}
}

func (server *Server) onSweep(removed []string) {
	server.metrics.keysExpired(expiredOnSweep, len(removed))
	if len(removed) > 0 {
		server.logger.Debug("expired keys swept", "removed", len(removed))
	}
}

func (server *Server) track(conn net.Conn) {
	server.activeMutex.Lock()
	defer server.activeMutex.Unlock()
	server.active[conn] = struct{}{}
}

func (server *Server) forget(conn net.Conn) {
	server.activeMutex.Lock()
	defer server.activeMutex.Unlock()
	delete(server.active, conn)
}

func (server *Server) shutdown() {
	server.activeMutex.Lock()
	for conn := range server.active {
		conn.Close()
	}
	server.activeMutex.Unlock()

	server.connections.Wait()
	server.logger.Info("server stopped")
}
