package sentinel

import (
	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
)

// ChannelEventHandler receives the outcome of one channel establishment
// attempt: an established channel, or the error that prevented one. Exactly
// one of err and channel is set.
type ChannelEventHandler func(err error, channel ChannelI)

// InventoryEventHandler receives one inventory announcement from a channel,
// or the error that ended the channel's feed for good.
type InventoryEventHandler func(err error, inv *wire.MsgInv)

// StartEventHandler receives the outcome of the orchestrator's connect
// sequence. It fires at most once per BeginConnecting call.
type StartEventHandler func(err error)

// TransactionHandler is the observer callback. It receives the hash of every
// transaction announced on any established channel, and may be invoked from
// any worker, though never concurrently with itself.
type TransactionHandler func(txHash *chainhash.Hash)

// StartResultHandler reports the start outcome to the observer. A nil error
// means the connect sequence was initiated.
type StartResultHandler func(err error)

// ChannelI is a single established peer connection carrying inventory
// announcements.
type ChannelI interface {
	// ID identifies this connection. It is stable for the connection's
	// lifetime and never reused, so a reconnect to the same address yields
	// a distinct channel.
	ID() string
	String() string

	// SubscribeNextInventory registers a one-shot handler for the next
	// announcement on this channel. Announcements arriving while no handler
	// is registered are buffered in arrival order. Once the channel has
	// reported an error the handler fires immediately with that error.
	SubscribeNextInventory(handler InventoryEventHandler)
}

// OrchestratorI maintains the outbound connection set and hands established
// channels to its subscriber.
type OrchestratorI interface {
	// SetMaxOutbound caps the number of simultaneously maintained outbound
	// connections. Must be called before BeginConnecting.
	SetMaxOutbound(n uint)

	// SubscribeNextChannel registers a one-shot handler for the next channel
	// establishment outcome, success or failure.
	SubscribeNextChannel(handler ChannelEventHandler)

	// BeginConnecting starts dialing peers. The handler fires exactly once
	// with the initiation outcome; establishment outcomes are delivered
	// through SubscribeNextChannel.
	BeginConnecting(onStarted StartEventHandler)
}
