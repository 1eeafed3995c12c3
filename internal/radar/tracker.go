package radar

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// Tracker measures how far a transaction has propagated through the overlay.
// Register a hash of interest, feed every observed announcement through
// Observe, and Propagation reports the fraction of the outbound peer target
// that has announced it. Observations of untracked hashes are ignored, so
// the tracker can sit directly behind the sentinel's observer callback.
type Tracker struct {
	logger *slog.Logger
	target uint64

	mu      sync.RWMutex
	tracked map[chainhash.Hash]*atomic.Uint64
}

// NewTracker creates a tracker expecting announcements from up to target
// peers per transaction.
func NewTracker(logger *slog.Logger, target uint64) *Tracker {
	return &Tracker{
		logger:  logger.With(slog.String("module", "radar")),
		target:  max(target, 1),
		tracked: make(map[chainhash.Hash]*atomic.Uint64),
	}
}

// Track starts counting observations for the hash. Tracking an already
// tracked hash keeps its count.
func (t *Tracker) Track(txHash *chainhash.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, found := t.tracked[*txHash]; found {
		return
	}

	t.tracked[*txHash] = &atomic.Uint64{}
	t.logger.Info("Tracking transaction", slog.String("hash", txHash.String()))
}

// Untrack stops counting observations for the hash and drops its count.
func (t *Tracker) Untrack(txHash *chainhash.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.tracked, *txHash)
}

// Observe records one announcement of the hash. It reports whether the hash
// is tracked.
func (t *Tracker) Observe(txHash *chainhash.Hash) bool {
	t.mu.RLock()
	count, found := t.tracked[*txHash]
	t.mu.RUnlock()

	if !found {
		return false
	}

	observations := count.Add(1)
	t.logger.Debug("Observed tracked transaction",
		slog.String("hash", txHash.String()),
		slog.Uint64("observations", observations),
	)

	return true
}

// Count reports how often the hash has been observed so far.
func (t *Tracker) Count(txHash *chainhash.Hash) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count, found := t.tracked[*txHash]
	if !found {
		return 0
	}

	return count.Load()
}

// Propagation reports the observed fraction of the peer target for the hash,
// capped at 1. An untracked hash reports 0.
func (t *Tracker) Propagation(txHash *chainhash.Hash) float64 {
	observations := t.Count(txHash)

	fraction := float64(observations) / float64(t.target)
	return min(fraction, 1)
}

// Snapshot returns the current observation count per tracked hash.
func (t *Tracker) Snapshot() map[string]uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]uint64, len(t.tracked))
	for hash, count := range t.tracked {
		counts[hash.String()] = count.Load()
	}

	return counts
}
