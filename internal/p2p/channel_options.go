package p2p

import (
	"time"

	"github.com/libsv/go-p2p/wire"
)

type ChannelOption func(c *Channel)

func WithMaximumMessageSize(maximumMessageSize int64) ChannelOption {
	return func(c *Channel) {
		c.maxMsgSize = maximumMessageSize
	}
}

func WithReadBufferSize(size int) ChannelOption {
	return func(c *Channel) {
		c.readBuffSize = size
	}
}

func WithWriteChannelSize(n uint16) ChannelOption {
	return func(c *Channel) {
		c.writeCh = make(chan wire.Message, n)
	}
}

// WithInventoryBufferSize sets how many announcements a channel buffers while
// no subscription is outstanding. A full buffer backpressures the read
// handler.
func WithInventoryBufferSize(n uint16) ChannelOption {
	return func(c *Channel) {
		c.invCh = make(chan *wire.MsgInv, n)
	}
}

func WithPingInterval(interval time.Duration, connectionHealthThreshold time.Duration) ChannelOption {
	return func(c *Channel) {
		c.pingInterval = interval
		c.healthThreshold = connectionHealthThreshold
	}
}

// SetExcessiveBlockSize sets the global wire limit for block size
func SetExcessiveBlockSize(ebs uint64) {
	wire.SetLimits(ebs)
}
