package sentinel

import (
	"log/slog"
	"sync"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// callbackBridge is the crossing point into the observer's code. A single
// guard serializes every invocation, and a failure inside the observer is
// logged and suppressed so it cannot take down the worker that delivered it.
type callbackBridge struct {
	logger *slog.Logger

	mu            sync.Mutex
	onTransaction TransactionHandler
	onStartResult StartResultHandler
}

func newCallbackBridge(logger *slog.Logger, onTransaction TransactionHandler, onStartResult StartResultHandler) *callbackBridge {
	return &callbackBridge{
		logger:        logger,
		onTransaction: onTransaction,
		onStartResult: onStartResult,
	}
}

// NotifyTransaction hands one transaction hash to the observer.
func (b *callbackBridge) NotifyTransaction(txHash *chainhash.Hash) {
	if b.onTransaction == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// runs before the deferred unlock, so a panic is recovered while the
	// guard is still held and the guard is released afterwards
	defer b.recoverObserver("transaction")

	b.onTransaction(txHash)
}

// NotifyStartResult hands the start outcome to the observer.
func (b *callbackBridge) NotifyStartResult(err error) {
	if b.onStartResult == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.recoverObserver("start result")

	b.onStartResult(err)
}

func (b *callbackBridge) recoverObserver(callback string) {
	if r := recover(); r != nil {
		b.logger.Error("Observer callback panicked", slog.String("callback", callback), slog.Any("reason", r))
	}
}
