package p2p

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/txsentinel/pkg/sentinel"
)

const (
	defaultMaximumMessageSize  = 32 * 1024 * 1024
	defaultReadBufferSize      = 4096
	defaultWriteChannelSize    = 128
	defaultInventoryBufferSize = 256
	defaultPingInterval        = time.Minute
	defaultHealthThreshold     = 3 * time.Minute

	commandKey = "cmd"
	errKey     = "err"
)

// ErrChannelClosed ends an inventory subscription on a channel whose
// connection is gone. No further announcements will ever arrive.
var ErrChannelClosed = errors.New("channel closed")

var _ sentinel.ChannelI = (*Channel)(nil)

// Channel is one established, handshaken peer connection. It reads wire
// messages off the connection, answers keep-alive pings itself, and buffers
// inventory announcements in arrival order for one-shot subscriptions. The
// identity assigned at construction is never reused, so a reconnect to the
// same address yields a distinct channel.
type Channel struct {
	id      string
	address string
	network wire.BitcoinNet

	logger *slog.Logger
	conn   net.Conn

	execWg        sync.WaitGroup
	execCtx       context.Context
	cancelExecCtx context.CancelFunc
	closeOnce     sync.Once
	done          chan struct{}

	writeCh chan wire.Message
	aliveCh chan struct{}
	invCh   chan *wire.MsgInv

	pingInterval    time.Duration
	healthThreshold time.Duration
	maxMsgSize      int64
	readBuffSize    int
}

// NewChannel wraps an already handshaken connection and starts its read,
// write and keep-alive handlers. The caller learns about the connection
// going away through Done.
func NewChannel(logger *slog.Logger, conn net.Conn, address string, network wire.BitcoinNet, options ...ChannelOption) *Channel {
	ctx, cancelFn := context.WithCancel(context.Background())

	c := &Channel{
		id:      uuid.NewString(),
		address: address,
		network: network,

		conn: conn,

		execCtx:       ctx,
		cancelExecCtx: cancelFn,
		done:          make(chan struct{}),

		aliveCh: make(chan struct{}, 10),

		pingInterval:    defaultPingInterval,
		healthThreshold: defaultHealthThreshold,
		maxMsgSize:      defaultMaximumMessageSize,
		readBuffSize:    defaultReadBufferSize,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.writeCh == nil {
		c.writeCh = make(chan wire.Message, defaultWriteChannelSize)
	}
	if c.invCh == nil {
		c.invCh = make(chan *wire.MsgInv, defaultInventoryBufferSize)
	}

	c.logger = logger.With(
		slog.Group("channel",
			slog.String("network", network.String()),
			slog.String("address", address),
			slog.String("id", c.id),
		),
	)

	c.listenForMessages()
	c.sendMessages()
	c.keepAlive()
	c.healthMonitor()

	c.logger.Info("Channel ready")

	return c
}

// ID identifies this connection for its lifetime.
func (c *Channel) ID() string {
	return c.id
}

// String reports the remote address.
func (c *Channel) String() string {
	return c.address
}

// SubscribeNextInventory registers a one-shot handler for the next inventory
// announcement. Announcements that arrived while no handler was registered
// are delivered first, in arrival order. Once the buffer is drained after the
// connection is gone, the handler fires with ErrChannelClosed. At most one
// subscription may be outstanding at a time.
func (c *Channel) SubscribeNextInventory(handler sentinel.InventoryEventHandler) {
	go func() {
		inv, ok := <-c.invCh
		if !ok {
			handler(ErrChannelClosed, nil)
			return
		}

		handler(nil, inv)
	}()
}

// Done is closed when the connection is gone and the channel will produce no
// further announcements.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down and waits for all handlers to stop. It is
// safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.logger.Info("Closing channel")

		c.cancelExecCtx()
		_ = c.conn.Close()
		c.execWg.Wait()

		// the read handler has stopped, nothing writes to invCh anymore
		close(c.invCh)
		close(c.done)

		c.logger.Info("Channel closed")
	})
}

// closeAsync is the failure path out of the channel's own handlers. Close
// waits for the handlers, so a handler must not call it directly.
func (c *Channel) closeAsync() {
	go c.Close()
}

func (c *Channel) listenForMessages() {
	c.execWg.Add(1)

	go func() {
		l := c.logger
		l.Debug("Starting read handler")
		defer l.Debug("Shutting down read handler")
		defer c.execWg.Done()

		reader := NewWireReaderSize(c.conn, c.maxMsgSize, c.readBuffSize)
		for {
			msg, err := reader.ReadNextMsg(c.execCtx, wire.ProtocolVersion, c.network)
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				l.Error("Failed to read message", slog.String(errKey, err.Error()))
				c.closeAsync()
				return
			}

			cmd := msg.Command()
			l.Log(context.Background(), slogLvlTrace, "Received", slogUpperString(commandKey, cmd))

			switch cmd {
			case wire.CmdInv:
				inv, ok := msg.(*wire.MsgInv)
				if !ok {
					l.Warn("Received invalid INV")
					continue
				}

				select {
				case c.invCh <- inv:
				case <-c.execCtx.Done():
					return
				}

			case wire.CmdVersion, wire.CmdVerAck:
				l.Warn("Received handshake message after handshake completed", slogUpperString(commandKey, cmd))

			case wire.CmdPing:
				ping, ok := msg.(*wire.MsgPing)
				if !ok {
					l.Warn("Received invalid PING")
					continue
				}

				c.aliveCh <- struct{}{}
				c.writeCh <- wire.NewMsgPong(ping.Nonce)

			case wire.CmdPong:
				c.aliveCh <- struct{}{}

			default:
				// observation only, nothing else is our concern
				l.Log(context.Background(), slogLvlTrace, "Ignoring", slogUpperString(commandKey, cmd))
			}
		}
	}()
}

func (c *Channel) sendMessages() {
	c.execWg.Add(1)

	go func() {
		l := c.logger
		l.Debug("Starting write handler")
		defer l.Debug("Shutting down write handler")
		defer c.execWg.Done()

		for {
			select {
			case <-c.execCtx.Done():
				return

			case msg := <-c.writeCh:
				err := wire.WriteMessage(c.conn, msg, wire.ProtocolVersion, c.network)
				if err != nil {
					l.Error("Failed to send message",
						slogUpperString(commandKey, msg.Command()),
						slog.String(errKey, err.Error()),
					)
					c.closeAsync()
					return
				}

				l.Log(context.Background(), slogLvlTrace, "Sent", slogUpperString(commandKey, msg.Command()))
			}
		}
	}()
}

func (c *Channel) keepAlive() {
	c.execWg.Add(1)

	go func() {
		c.logger.Debug("Start keep-alive")
		defer c.logger.Debug("Stop keep-alive")
		defer c.execWg.Done()

		t := time.NewTicker(c.pingInterval)
		defer t.Stop()

		for {
			select {
			case <-c.execCtx.Done():
				return

			case <-t.C:
				nonce, err := wire.RandomUint64()
				if err != nil {
					c.logger.Error("KeepAlive: failed to generate nonce for PING message", slog.String(errKey, err.Error()))
					continue
				}

				c.writeCh <- wire.NewMsgPing(nonce)
			}
		}
	}()
}

func (c *Channel) healthMonitor() {
	c.execWg.Add(1)

	go func() {
		c.logger.Debug("Start health monitor")
		defer c.logger.Debug("Stop health monitor")
		defer c.execWg.Done()

		// without a ping or pong for too long the connection is assumed dead
		t := time.NewTicker(c.healthThreshold)
		defer t.Stop()

		for {
			select {
			case <-c.execCtx.Done():
				return

			case <-c.aliveCh:
				t.Reset(c.healthThreshold)
				c.logger.Log(context.Background(), slogLvlTrace, "Connection is healthy - reset ticker", slog.Duration("interval", c.healthThreshold))

			case <-t.C:
				c.logger.Warn("Channel unhealthy - closing")
				c.closeAsync()
				return
			}
		}
	}()
}
