package config

import (
	"fmt"
	"time"
)

type SentinelConfig struct {
	LogLevel     string            `json:"logLevel" mapstructure:"logLevel"`
	LogFormat    string            `json:"logFormat" mapstructure:"logFormat"`
	ProfilerAddr string            `json:"profilerAddr" mapstructure:"profilerAddr"`
	Prometheus   *PrometheusConfig `json:"prometheus" mapstructure:"prometheus"`
	Network      string            `json:"network" mapstructure:"network"`
	Peers        []*PeerConfig     `json:"peers" mapstructure:"peers"`
	Sentinel     *CoreConfig       `json:"sentinel" mapstructure:"sentinel"`
	P2P          *P2PConfig        `json:"p2p" mapstructure:"p2p"`
	Mq           *MqConfig         `json:"mq" mapstructure:"mq"`
	Radar        *RadarConfig      `json:"radar" mapstructure:"radar"`
}

type PrometheusConfig struct {
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	Addr     string `json:"addr" mapstructure:"addr"`
}

func (p *PrometheusConfig) IsEnabled() bool {
	return p.Endpoint != "" && p.Addr != ""
}

type PeerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

func (p *PeerConfig) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// CoreConfig sizes the observation engine itself.
type CoreConfig struct {
	Workers          int `json:"workers" mapstructure:"workers"`
	MaxOutboundPeers int `json:"maxOutboundPeers" mapstructure:"maxOutboundPeers"`
	QueueSize        int `json:"queueSize" mapstructure:"queueSize"`
}

type P2PConfig struct {
	UserAgent          string        `json:"userAgent" mapstructure:"userAgent"`
	ConnectionTimeout  time.Duration `json:"connectionTimeout" mapstructure:"connectionTimeout"`
	PingInterval       time.Duration `json:"pingInterval" mapstructure:"pingInterval"`
	HealthThreshold    time.Duration `json:"healthThreshold" mapstructure:"healthThreshold"`
	RetryInterval      time.Duration `json:"retryInterval" mapstructure:"retryInterval"`
	MaxRetryInterval   time.Duration `json:"maxRetryInterval" mapstructure:"maxRetryInterval"`
	ExcessiveBlockSize uint64        `json:"excessiveBlockSize" mapstructure:"excessiveBlockSize"`
}

type MqConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Topic   string `json:"topic" mapstructure:"topic"`
}

type RadarConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Hashes of interest to track from startup
	Hashes []string `json:"hashes" mapstructure:"hashes"`
}
