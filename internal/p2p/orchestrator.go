package p2p

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/txsentinel/pkg/sentinel"
)

const (
	defaultMaxOutbound       = 8
	defaultConnectionTimeout = 30 * time.Second
	defaultRetryInterval     = 2 * time.Second
	defaultMaxRetryInterval  = 2 * time.Minute

	// establishment outcomes waiting for the next subscriber are capped;
	// beyond that the oldest is dropped
	maxPendingChannelEvents = 64
)

var (
	ErrNoPeerAddresses   = errors.New("no peer addresses configured")
	ErrAlreadyConnecting = errors.New("connect sequence already begun")
)

// DialFunc opens the raw connection to a peer. It exists so tests can hand
// the orchestrator an in-memory pipe.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

var _ sentinel.OrchestratorI = (*Orchestrator)(nil)

// Orchestrator owns the address book and keeps up to maxOutbound channels
// established against it. Every establishment outcome, success or failure, is
// handed to the one-shot channel subscription, and a channel whose connection
// goes away is dialed again with exponential backoff. The subscriber never
// sees the same channel twice: a redial yields a fresh one.
type Orchestrator struct {
	logger    *slog.Logger
	network   wire.BitcoinNet
	addresses []string

	dial              DialFunc
	connectionTimeout time.Duration
	retryInterval     time.Duration
	maxRetryInterval  time.Duration
	userAgentName     *string
	userAgentVersion  *string
	servicesFlag      wire.ServiceFlag
	channelOpts       []ChannelOption

	maxOutbound atomic.Uint32
	connecting  atomic.Bool

	events channelEvents

	execWg        sync.WaitGroup
	execCtx       context.Context
	cancelExecCtx context.CancelFunc
}

func NewOrchestrator(logger *slog.Logger, network wire.BitcoinNet, addresses []string, options ...OrchestratorOption) *Orchestrator {
	ctx, cancelFn := context.WithCancel(context.Background())

	o := &Orchestrator{
		logger:    logger.With(slog.String("module", "p2p"), slog.String("network", network.String())),
		network:   network,
		addresses: addresses,

		dial:              (&net.Dialer{}).DialContext,
		connectionTimeout: defaultConnectionTimeout,
		retryInterval:     defaultRetryInterval,
		maxRetryInterval:  defaultMaxRetryInterval,
		servicesFlag:      wire.SFNodeNetwork,

		execCtx:       ctx,
		cancelExecCtx: cancelFn,
	}

	for _, opt := range options {
		opt(o)
	}

	return o
}

// SetMaxOutbound caps the number of simultaneously maintained outbound
// connections. It takes effect on the next BeginConnecting.
func (o *Orchestrator) SetMaxOutbound(n uint) {
	o.maxOutbound.Store(uint32(n)) // #nosec G115 - caps are small
}

// SubscribeNextChannel registers a one-shot handler for the next channel
// establishment outcome. Outcomes occurring while no handler is registered
// are queued in arrival order.
func (o *Orchestrator) SubscribeNextChannel(handler sentinel.ChannelEventHandler) {
	o.events.subscribe(handler)
}

// BeginConnecting starts one connector per outbound slot and reports the
// initiation outcome exactly once through onStarted. Establishment outcomes
// are delivered through SubscribeNextChannel, not here.
func (o *Orchestrator) BeginConnecting(onStarted sentinel.StartEventHandler) {
	err := o.beginConnecting()
	if onStarted != nil {
		onStarted(err)
	}
}

func (o *Orchestrator) beginConnecting() error {
	if !o.connecting.CompareAndSwap(false, true) {
		return ErrAlreadyConnecting
	}

	if len(o.addresses) == 0 {
		o.connecting.Store(false)
		return ErrNoPeerAddresses
	}

	slots := int(o.maxOutbound.Load())
	if slots == 0 {
		slots = defaultMaxOutbound
	}
	if slots > len(o.addresses) {
		o.logger.Debug("Fewer addresses than outbound slots",
			slog.Int("slots", slots),
			slog.Int("addresses", len(o.addresses)),
		)
		slots = len(o.addresses)
	}

	o.logger.Info("Begin connecting", slog.Int("slots", slots))

	for slot := 0; slot < slots; slot++ {
		o.execWg.Add(1)
		go o.connectSlot(slot)
	}

	return nil
}

// Shutdown stops all connectors and closes their channels. The orchestrator
// cannot be reused afterwards.
func (o *Orchestrator) Shutdown() {
	o.logger.Info("Shutting down orchestrator")

	o.cancelExecCtx()
	o.execWg.Wait()

	o.logger.Info("Orchestrator shutdown complete")
}

// connectSlot keeps one outbound slot filled: establish a channel, announce
// it, wait out its lifetime, dial the next address. Failed attempts are
// announced too and backed off exponentially.
func (o *Orchestrator) connectSlot(slot int) {
	defer o.execWg.Done()

	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(o.retryInterval),
		backoff.WithMaxInterval(o.maxRetryInterval),
		backoff.WithMaxElapsedTime(0),
	)

	attempt := 0
	for {
		select {
		case <-o.execCtx.Done():
			return
		default:
		}

		address := o.addresses[(slot+attempt)%len(o.addresses)]
		attempt++

		channel, err := o.establish(address)
		if err != nil {
			o.logger.Warn("Failed to establish channel",
				slog.String("address", address),
				slog.String(errKey, err.Error()),
			)
			o.events.publish(fmt.Errorf("connecting to %s: %w", address, err), nil)

			if o.waitOrDone(bo.NextBackOff()) {
				return
			}
			continue
		}

		bo.Reset()
		o.events.publish(nil, channel)

		select {
		case <-o.execCtx.Done():
			channel.Close()
			return

		case <-channel.Done():
			// the connection is gone, fill the slot again
			if o.waitOrDone(bo.NextBackOff()) {
				return
			}
		}
	}
}

func (o *Orchestrator) establish(address string) (*Channel, error) {
	ctxDial, cancelFn := context.WithTimeout(o.execCtx, o.connectionTimeout)
	defer cancelFn()

	conn, err := o.dial(ctxDial, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	err = o.handshake(conn, address)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}

	return NewChannel(o.logger, conn, address, o.network, o.channelOpts...), nil
}

func (o *Orchestrator) waitOrDone(d time.Duration) (done bool) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-o.execCtx.Done():
		return true
	case <-t.C:
		return false
	}
}

// channelEvents is the one-shot subscription point for establishment
// outcomes. At most one handler is armed at a time; outcomes arriving in
// between are queued so none is lost while the subscriber processes.
type channelEvents struct {
	mu      sync.Mutex
	handler sentinel.ChannelEventHandler
	pending []channelEvent
}

type channelEvent struct {
	err     error
	channel sentinel.ChannelI
}

func (q *channelEvents) publish(err error, channel sentinel.ChannelI) {
	q.mu.Lock()

	if q.handler == nil {
		if len(q.pending) == maxPendingChannelEvents {
			// nobody has subscribed for a long time, drop the oldest
			q.pending = q.pending[1:]
		}
		q.pending = append(q.pending, channelEvent{err: err, channel: channel})
		q.mu.Unlock()

		return
	}

	handler := q.handler
	q.handler = nil
	q.mu.Unlock()

	handler(err, channel)
}

func (q *channelEvents) subscribe(handler sentinel.ChannelEventHandler) {
	q.mu.Lock()

	if len(q.pending) == 0 {
		q.handler = handler
		q.mu.Unlock()

		return
	}

	ev := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()

	handler(ev.err, ev.channel)
}
