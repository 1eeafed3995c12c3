package mq

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/nats-io/nats.go"
)

const (
	defaultMaxReconnects    = 10
	defaultReconnectWait    = 2 * time.Second
	defaultPingInterval     = 15 * time.Second
	defaultReconnectBufSize = 8 * 1024 * 1024
)

// Publisher forwards observed transaction hashes to a NATS subject so a
// downstream monitor can consume the feed. Hashes go out as their raw 32
// bytes in wire order.
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	topic  string
}

func NewPublisher(logger *slog.Logger, natsURL string, topic string) (*Publisher, error) {
	logger = logger.With(slog.String("module", "nats"))

	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	natsOpts := []nats.Option{
		nats.Name(hostname),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(defaultMaxReconnects),
		nats.ReconnectWait(defaultReconnectWait),
		nats.PingInterval(defaultPingInterval),
		nats.ReconnectBufSize(defaultReconnectBufSize),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			if err != nil {
				logger.Error("connection error", slog.String("err", err.Error()))
			}
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Error("client disconnected", slog.String("err", err.Error()))
				return
			}
			logger.Info("client disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("client reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("client closed")
		}),
	}

	conn, err := nats.Connect(natsURL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message queue at URL %s: %w", natsURL, err)
	}

	return &Publisher{
		logger: logger,
		conn:   conn,
		topic:  topic,
	}, nil
}

// PublishHash sends one observed transaction hash to the feed topic.
func (p *Publisher) PublishHash(txHash *chainhash.Hash) error {
	err := p.conn.Publish(p.topic, txHash.CloneBytes())
	if err != nil {
		return fmt.Errorf("failed to publish hash %s: %w", txHash, err)
	}

	return nil
}

// Shutdown flushes buffered messages and closes the connection.
func (p *Publisher) Shutdown() {
	if p.conn == nil {
		return
	}

	err := p.conn.Drain()
	if err != nil {
		p.logger.Error("failed to drain connection", slog.String("err", err.Error()))
	}

	p.conn.Close()
}
