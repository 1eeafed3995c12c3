package sentinel

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/libsv/go-p2p/wire"
	"github.com/ordishs/go-utils/safemap"

	"github.com/bitcoin-sv/txsentinel/internal/tracing"
)

var (
	ErrSentinelNotStopped   = errors.New("sentinel is not stopped")
	ErrInvalidWorkerCount   = errors.New("worker count must be at least 1")
	ErrInvalidOutboundLimit = errors.New("outbound peer limit must be at least 1")
)

const (
	errKey     = "err"
	hashKey    = "hash"
	typeKey    = "type"
	channelKey = "channel"
)

// State is the lifecycle state of a Sentinel.
type State uint32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// session holds everything that belongs to one Start/Stop cycle. Handlers
// registered with the orchestrator close over their session, so a late event
// from a previous cycle cannot reach the pool or bridge of the next one.
type session struct {
	pool       *workerPool
	bridge     *callbackBridge
	classifier *inventoryClassifier
	startOnce  sync.Once
}

// Sentinel watches a peer-to-peer overlay for transaction announcements and
// delivers each announced transaction hash to a single observer callback.
// Block announcements are ignored, unknown inventory types are logged and
// skipped.
type Sentinel struct {
	logger *slog.Logger
	orch   OrchestratorI

	startMu sync.Mutex
	state   atomic.Uint32
	sess    *session

	queueSize int
	stats     *safemap.Safemap[string, *tracing.ChannelStats]
}

// New creates a stopped Sentinel on top of the given orchestrator. The
// orchestrator's own lifecycle stays with the caller.
func New(logger *slog.Logger, orchestrator OrchestratorI, opts ...Option) *Sentinel {
	s := &Sentinel{
		logger:    logger.With(slog.String("module", "sentinel")),
		orch:      orchestrator,
		queueSize: defaultTaskQueueSize,
		stats:     safemap.New[string, *tracing.ChannelStats](),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start brings the Sentinel to the running state: it spawns workers worker
// goroutines, caps the orchestrator at maxOutbound connections, arms channel
// acceptance and triggers the connect sequence. onStartResult fires exactly
// once with the outcome of the connect sequence, onTransaction fires for
// every transaction announced on any established channel.
//
// Start fails with ErrSentinelNotStopped unless the Sentinel is stopped.
func (s *Sentinel) Start(workers int, maxOutbound int, onTransaction TransactionHandler, onStartResult StartResultHandler) error {
	if workers < 1 {
		return ErrInvalidWorkerCount
	}
	if maxOutbound < 1 {
		return ErrInvalidOutboundLimit
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.State() != StateStopped {
		return ErrSentinelNotStopped
	}
	s.setState(StateStarting)

	sess := &session{
		pool:   newWorkerPool(workers, s.queueSize),
		bridge: newCallbackBridge(s.logger, onTransaction, onStartResult),
	}
	sess.classifier = &inventoryClassifier{
		logger: s.logger,
		bridge: sess.bridge,
		stats:  s.stats,
	}
	s.sess = sess

	s.orch.SetMaxOutbound(uint(maxOutbound))
	s.armChannelAcceptance(sess)
	s.orch.BeginConnecting(func(err error) {
		submitted := sess.pool.Submit(func() {
			sess.startOnce.Do(func() {
				sess.bridge.NotifyStartResult(err)
			})
		})
		if !submitted {
			s.logger.Warn("Start result arrived after stop, dropping it")
		}
	})

	// running from here on, without waiting for the first connection
	s.setState(StateRunning)
	s.logger.Info("Started",
		slog.Int("workers", workers),
		slog.Int("maxOutbound", maxOutbound),
	)

	return nil
}

// Stop halts dispatch of further observer work and blocks until callbacks
// that are already running have returned. Announcements queued but not yet
// started are discarded. Stop on a stopped Sentinel is a no-op.
func (s *Sentinel) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if st := s.State(); st != StateRunning && st != StateStarting {
		return
	}
	s.setState(StateStopping)

	s.sess.pool.Shutdown()
	s.sess = nil

	s.setState(StateStopped)
	s.logger.Info("Stopped")
}

// State reports the current lifecycle state.
func (s *Sentinel) State() State {
	return State(s.state.Load())
}

// Stats exposes the per-channel counters, keyed by channel address.
func (s *Sentinel) Stats() *safemap.Safemap[string, *tracing.ChannelStats] {
	return s.stats
}

func (s *Sentinel) setState(state State) {
	s.state.Store(uint32(state))
}

// armChannelAcceptance registers a one-shot subscription for the next
// channel establishment outcome. The handler hops onto the pool and re-arms
// itself there, so acceptance stays alive for the whole session no matter
// how establishment attempts turn out.
func (s *Sentinel) armChannelAcceptance(sess *session) {
	s.orch.SubscribeNextChannel(func(err error, channel ChannelI) {
		sess.pool.Submit(func() {
			s.acceptChannel(sess, err, channel)
		})
	})
}

func (s *Sentinel) acceptChannel(sess *session, err error, channel ChannelI) {
	if err != nil {
		s.logger.Warn("Channel establishment failed", slog.String(errKey, err.Error()))
	} else {
		s.logger.Info("Channel established",
			slog.String(channelKey, channel.String()),
			slog.String("id", channel.ID()),
		)
		s.watchInventory(sess, channel)
	}

	// re-arm unconditionally: a failed establishment must not stop
	// acceptance of later channels
	s.armChannelAcceptance(sess)
}

// watchInventory registers a one-shot subscription for the next announcement
// on the channel. Processing happens on the pool, and the subscription is
// renewed only after the announcement is fully processed, which keeps
// delivery per channel strictly in arrival order.
func (s *Sentinel) watchInventory(sess *session, channel ChannelI) {
	channel.SubscribeNextInventory(func(err error, inv *wire.MsgInv) {
		sess.pool.Submit(func() {
			s.handleInventory(sess, channel, err, inv)
		})
	})
}

func (s *Sentinel) handleInventory(sess *session, channel ChannelI, err error, inv *wire.MsgInv) {
	if err != nil {
		// this feed is over, other channels are unaffected
		s.logger.Error("Inventory feed ended",
			slog.String(channelKey, channel.String()),
			slog.String(errKey, err.Error()),
		)
		sess.classifier.feedEnded(channel)

		return
	}

	sess.classifier.process(inv, channel)
	s.watchInventory(sess, channel)
}
