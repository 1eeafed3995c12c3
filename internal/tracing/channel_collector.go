package tracing

import (
	"sync/atomic"

	"github.com/ordishs/go-utils/safemap"
	"github.com/prometheus/client_golang/prometheus"
)

// ChannelStats counts what one channel announced and what became of it.
type ChannelStats struct {
	Announcements    atomic.Uint64
	Transactions     atomic.Uint64
	Blocks           atomic.Uint64
	UnknownInventory atomic.Uint64
	FeedErrors       atomic.Uint64
}

func NewChannelStats() *ChannelStats {
	return &ChannelStats{}
}

// ChannelCollector exposes per-channel inventory counters to prometheus.
type ChannelCollector struct {
	stats            *safemap.Safemap[string, *ChannelStats]
	announcements    *prometheus.Desc
	transactions     *prometheus.Desc
	blocks           *prometheus.Desc
	unknownInventory *prometheus.Desc
	feedErrors       *prometheus.Desc
}

// NewChannelCollector initializes every descriptor and registers the
// collector with the default prometheus registerer.
func NewChannelCollector(stats *safemap.Safemap[string, *ChannelStats]) *ChannelCollector {
	c := &ChannelCollector{
		stats: stats,
		announcements: prometheus.NewDesc("txsentinel_channel_announcement_count",
			"Shows the number of inventory announcements received on the channel",
			[]string{"channel"}, nil,
		),
		transactions: prometheus.NewDesc("txsentinel_channel_transaction_count",
			"Shows the number of transaction hashes delivered to the observer from the channel",
			[]string{"channel"}, nil,
		),
		blocks: prometheus.NewDesc("txsentinel_channel_block_count",
			"Shows the number of block announcements ignored on the channel",
			[]string{"channel"}, nil,
		),
		unknownInventory: prometheus.NewDesc("txsentinel_channel_unknown_inventory_count",
			"Shows the number of inventory items of unknown type seen on the channel",
			[]string{"channel"}, nil,
		),
		feedErrors: prometheus.NewDesc("txsentinel_channel_feed_error_count",
			"Shows the number of errors that ended the channel's inventory feed",
			[]string{"channel"}, nil,
		),
	}

	prometheus.MustRegister(c)

	return c
}

// Describe writes all descriptors to the prometheus desc channel.
func (c *ChannelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.announcements
	ch <- c.transactions
	ch <- c.blocks
	ch <- c.unknownInventory
	ch <- c.feedErrors
}

// Collect writes the latest value for each metric to the prometheus metric
// channel.
func (c *ChannelCollector) Collect(ch chan<- prometheus.Metric) {
	c.stats.Each(func(channel string, channelStats *ChannelStats) {
		ch <- prometheus.MustNewConstMetric(c.announcements, prometheus.CounterValue,
			float64(channelStats.Announcements.Load()), channel)
		ch <- prometheus.MustNewConstMetric(c.transactions, prometheus.CounterValue,
			float64(channelStats.Transactions.Load()), channel)
		ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.CounterValue,
			float64(channelStats.Blocks.Load()), channel)
		ch <- prometheus.MustNewConstMetric(c.unknownInventory, prometheus.CounterValue,
			float64(channelStats.UnknownInventory.Load()), channel)
		ch <- prometheus.MustNewConstMetric(c.feedErrors, prometheus.CounterValue,
			float64(channelStats.FeedErrors.Load()), channel)
	})
}
