package sentinel

// Option configures a Sentinel.
type Option func(s *Sentinel)

// WithTaskQueueSize sets the capacity of the worker pool's task queue. Work
// beyond this capacity backpressures the producing channel.
func WithTaskQueueSize(size int) Option {
	return func(s *Sentinel) {
		if size > 0 {
			s.queueSize = size
		}
	}
}
