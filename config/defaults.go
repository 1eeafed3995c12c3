package config

import "time"

func getDefaultConfig() *SentinelConfig {
	return &SentinelConfig{
		LogLevel:     "INFO",
		LogFormat:    "text",
		ProfilerAddr: "", // optional
		Prometheus: &PrometheusConfig{
			Endpoint: "", // optional
			Addr:     "", // optional
		},
		Network: "mainnet",
		Peers: []*PeerConfig{
			{
				Host: "localhost",
				Port: 8333,
			},
		},
		Sentinel: getDefaultCoreConfig(),
		P2P:      getDefaultP2PConfig(),
		Mq: &MqConfig{
			Enabled: false,
			URL:     "nats://nats:4222",
			Topic:   "observed-txs",
		},
		Radar: &RadarConfig{
			Enabled: false,
			Hashes:  nil,
		},
	}
}

func getDefaultCoreConfig() *CoreConfig {
	return &CoreConfig{
		Workers:          4,
		MaxOutboundPeers: 8,
		QueueSize:        1024,
	}
}

func getDefaultP2PConfig() *P2PConfig {
	return &P2PConfig{
		UserAgent:          "txsentinel",
		ConnectionTimeout:  30 * time.Second,
		PingInterval:       time.Minute,
		HealthThreshold:    3 * time.Minute,
		RetryInterval:      2 * time.Second,
		MaxRetryInterval:   2 * time.Minute,
		ExcessiveBlockSize: 4000000000,
	}
}
