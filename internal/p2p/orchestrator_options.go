package p2p

import (
	"time"

	"github.com/libsv/go-p2p/wire"
)

type OrchestratorOption func(o *Orchestrator)

func WithDialer(dial DialFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.dial = dial
	}
}

func WithConnectionTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.connectionTimeout = d
	}
}

// WithRetryInterval sets the initial and maximum backoff between
// establishment attempts on one outbound slot.
func WithRetryInterval(initial, maximum time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.retryInterval = initial
		o.maxRetryInterval = maximum
	}
}

func WithUserAgent(userAgentName string, userAgentVersion string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.userAgentName = &userAgentName
		o.userAgentVersion = &userAgentVersion
	}
}

func WithServiceFlag(flag wire.ServiceFlag) OrchestratorOption {
	return func(o *Orchestrator) {
		o.servicesFlag = flag
	}
}

// WithChannelOptions applies the given options to every channel the
// orchestrator establishes.
func WithChannelOptions(options ...ChannelOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.channelOpts = options
	}
}
