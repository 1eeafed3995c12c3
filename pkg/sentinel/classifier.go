package sentinel

import (
	"log/slog"

	"github.com/libsv/go-p2p/wire"
	"github.com/ordishs/go-utils/safemap"

	"github.com/bitcoin-sv/txsentinel/internal/tracing"
)

// inventoryClassifier turns one announcement into observer deliveries.
// Transaction items are handed to the bridge in arrival order, block items
// are dropped silently, and anything else is logged and dropped.
type inventoryClassifier struct {
	logger *slog.Logger
	bridge *callbackBridge
	stats  *safemap.Safemap[string, *tracing.ChannelStats]
}

func (c *inventoryClassifier) process(inv *wire.MsgInv, channel ChannelI) {
	stats := c.channelStats(channel)
	stats.Announcements.Add(1)

	for _, item := range inv.InvList {
		switch item.Type {
		case wire.InvTypeTx:
			c.bridge.NotifyTransaction(&item.Hash)
			stats.Transactions.Add(1)

		case wire.InvTypeBlock:
			// blocks are not our concern
			stats.Blocks.Add(1)

		default:
			c.logger.Warn("Ignoring unknown inventory type",
				slog.String(typeKey, item.Type.String()),
				slog.String(hashKey, item.Hash.String()),
				slog.String(channelKey, channel.String()),
			)
			stats.UnknownInventory.Add(1)
		}
	}
}

func (c *inventoryClassifier) feedEnded(channel ChannelI) {
	c.channelStats(channel).FeedErrors.Add(1)
}

func (c *inventoryClassifier) channelStats(channel ChannelI) *tracing.ChannelStats {
	stats, found := c.stats.Get(channel.String())
	if !found {
		stats = tracing.NewChannelStats()
		c.stats.Set(channel.String(), stats)
	}

	return stats
}
