package sentinel_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/txsentinel/internal/testdata"
	"github.com/bitcoin-sv/txsentinel/pkg/sentinel"
	"github.com/bitcoin-sv/txsentinel/pkg/sentinel/mocks"
)

const channelAddr = "localhost:18333"

func newOrchestratorMock() *mocks.OrchestratorIMock {
	return &mocks.OrchestratorIMock{
		SetMaxOutboundFunc:       func(_ uint) {},
		SubscribeNextChannelFunc: func(_ sentinel.ChannelEventHandler) {},
		BeginConnectingFunc:      func(_ sentinel.StartEventHandler) {},
	}
}

func newChannelMock(id string) *mocks.ChannelIMock {
	return &mocks.ChannelIMock{
		IDFunc:                     func() string { return id },
		StringFunc:                 func() string { return channelAddr },
		SubscribeNextInventoryFunc: func(_ sentinel.InventoryEventHandler) {},
	}
}

func invWithTxs(hashes ...*chainhash.Hash) *wire.MsgInv {
	msg := wire.NewMsgInv()
	for _, hash := range hashes {
		_ = msg.AddInvVect(wire.NewInvVect(wire.InvTypeTx, hash))
	}

	return msg
}

func Test_SentinelStart(t *testing.T) {
	t.Run("start wires up the orchestrator and runs", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		sut := sentinel.New(slog.Default(), orch)

		// when
		err := sut.Start(2, 8, func(_ *chainhash.Hash) {}, nil)

		// then
		require.NoError(t, err)
		require.Equal(t, sentinel.StateRunning, sut.State())

		require.Len(t, orch.SetMaxOutboundCalls(), 1)
		assert.EqualValues(t, 8, orch.SetMaxOutboundCalls()[0].N)
		assert.Len(t, orch.SubscribeNextChannelCalls(), 1)
		assert.Len(t, orch.BeginConnectingCalls(), 1)

		sut.Stop()
		require.Equal(t, sentinel.StateStopped, sut.State())
	})

	t.Run("rejects invalid arguments", func(t *testing.T) {
		tt := []struct {
			name        string
			workers     int
			maxOutbound int
			expectedErr error
		}{
			{
				name:        "zero workers",
				workers:     0,
				maxOutbound: 8,
				expectedErr: sentinel.ErrInvalidWorkerCount,
			},
			{
				name:        "negative workers",
				workers:     -1,
				maxOutbound: 8,
				expectedErr: sentinel.ErrInvalidWorkerCount,
			},
			{
				name:        "zero outbound limit",
				workers:     2,
				maxOutbound: 0,
				expectedErr: sentinel.ErrInvalidOutboundLimit,
			},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				// given
				orch := newOrchestratorMock()
				sut := sentinel.New(slog.Default(), orch)

				// when
				err := sut.Start(tc.workers, tc.maxOutbound, nil, nil)

				// then
				require.ErrorIs(t, err, tc.expectedErr)
				require.Equal(t, sentinel.StateStopped, sut.State())
				assert.Empty(t, orch.BeginConnectingCalls())
			})
		}
	})

	t.Run("start while running fails and leaves the first session alone", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		sut := sentinel.New(slog.Default(), orch)

		require.NoError(t, sut.Start(2, 8, nil, nil))

		// when
		err := sut.Start(2, 8, nil, nil)

		// then
		require.ErrorIs(t, err, sentinel.ErrSentinelNotStopped)
		require.Equal(t, sentinel.StateRunning, sut.State())
		assert.Len(t, orch.BeginConnectingCalls(), 1)

		sut.Stop()
	})

	t.Run("can be started again after stop", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		sut := sentinel.New(slog.Default(), orch)

		// when
		require.NoError(t, sut.Start(2, 8, nil, nil))
		sut.Stop()
		err := sut.Start(2, 8, nil, nil)

		// then
		require.NoError(t, err)
		require.Equal(t, sentinel.StateRunning, sut.State())
		assert.Len(t, orch.BeginConnectingCalls(), 2)

		sut.Stop()
	})
}

func Test_SentinelStartResult(t *testing.T) {
	t.Run("start outcome reaches the observer exactly once", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()

		results := make(chan error, 4)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, func(err error) { results <- err }))
		defer sut.Stop()

		onStarted := orch.BeginConnectingCalls()[0].OnStarted

		// when
		onStarted(nil)
		onStarted(nil) // misbehaving duplicate must be swallowed

		// then
		select {
		case err := <-results:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("start result was never delivered")
		}

		select {
		case <-results:
			t.Fatal("start result was delivered more than once")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("failed start outcome carries the error", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		connectErr := errors.New("no peers configured")

		results := make(chan error, 1)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, func(err error) { results <- err }))
		defer sut.Stop()

		// when
		orch.BeginConnectingCalls()[0].OnStarted(connectErr)

		// then
		select {
		case err := <-results:
			require.ErrorIs(t, err, connectErr)
		case <-time.After(time.Second):
			t.Fatal("start result was never delivered")
		}
	})

	t.Run("start outcome after stop is dropped", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()

		results := make(chan error, 1)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, func(err error) { results <- err }))

		onStarted := orch.BeginConnectingCalls()[0].OnStarted
		sut.Stop()

		// when
		onStarted(nil)

		// then
		select {
		case <-results:
			t.Fatal("start result was delivered after stop")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func Test_SentinelChannelAcceptance(t *testing.T) {
	t.Run("established channel gets an inventory subscription and acceptance re-arms", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, nil))
		defer sut.Stop()

		// when
		orch.SubscribeNextChannelCalls()[0].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		// then
		assert.Len(t, channel.SubscribeNextInventoryCalls(), 1)
		assert.Len(t, orch.SubscribeNextChannelCalls(), 2)
	})

	t.Run("failed establishment re-arms acceptance", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()

		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, nil))
		defer sut.Stop()

		// when
		orch.SubscribeNextChannelCalls()[0].Handler(errors.New("handshake timed out"), nil)
		time.Sleep(100 * time.Millisecond)

		// then
		assert.Len(t, orch.SubscribeNextChannelCalls(), 2)

		// and the next establishment still works
		channel := newChannelMock("c-2")
		orch.SubscribeNextChannelCalls()[1].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		assert.Len(t, channel.SubscribeNextInventoryCalls(), 1)
	})

	t.Run("channel events after stop are dropped", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, nil, nil))

		handler := orch.SubscribeNextChannelCalls()[0].Handler
		sut.Stop()

		// when
		handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		// then
		assert.Empty(t, channel.SubscribeNextInventoryCalls())
		assert.Len(t, orch.SubscribeNextChannelCalls(), 1)
	})
}

func Test_SentinelInventoryDelivery(t *testing.T) {
	t.Run("transaction hashes are delivered in arrival order", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		received := make(chan string, 16)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(1, 8, func(txHash *chainhash.Hash) { received <- txHash.String() }, nil))
		defer sut.Stop()

		orch.SubscribeNextChannelCalls()[0].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		// when
		channel.SubscribeNextInventoryCalls()[0].Handler(nil, invWithTxs(testdata.TX1Hash, testdata.TX2Hash))
		time.Sleep(100 * time.Millisecond)
		channel.SubscribeNextInventoryCalls()[1].Handler(nil, invWithTxs(testdata.TX3Hash))

		// then
		expected := []string{testdata.TX1, testdata.TX2, testdata.TX3}
		for _, want := range expected {
			select {
			case got := <-received:
				assert.Equal(t, want, got)
			case <-time.After(time.Second):
				t.Fatal("transaction hash was never delivered")
			}
		}

		// the loop re-armed after every announcement
		time.Sleep(100 * time.Millisecond)
		assert.Len(t, channel.SubscribeNextInventoryCalls(), 3)
	})

	t.Run("feed error ends only the failed channel's loop", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		failing := newChannelMock("c-failing")
		healthy := newChannelMock("c-healthy")

		received := make(chan string, 16)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(2, 8, func(txHash *chainhash.Hash) { received <- txHash.String() }, nil))
		defer sut.Stop()

		orch.SubscribeNextChannelCalls()[0].Handler(nil, failing)
		time.Sleep(100 * time.Millisecond)
		orch.SubscribeNextChannelCalls()[1].Handler(nil, healthy)
		time.Sleep(100 * time.Millisecond)

		// when
		failing.SubscribeNextInventoryCalls()[0].Handler(errors.New("connection reset"), nil)
		healthy.SubscribeNextInventoryCalls()[0].Handler(nil, invWithTxs(testdata.TX1Hash))

		// then
		select {
		case got := <-received:
			assert.Equal(t, testdata.TX1, got)
		case <-time.After(time.Second):
			t.Fatal("healthy channel's announcement was never delivered")
		}

		time.Sleep(100 * time.Millisecond)
		// failed loop never re-subscribed, healthy one did
		assert.Len(t, failing.SubscribeNextInventoryCalls(), 1)
		assert.Len(t, healthy.SubscribeNextInventoryCalls(), 2)
	})

	t.Run("block announcements produce no observer calls", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		received := make(chan string, 16)
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(1, 8, func(txHash *chainhash.Hash) { received <- txHash.String() }, nil))
		defer sut.Stop()

		orch.SubscribeNextChannelCalls()[0].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		// when
		msg := wire.NewMsgInv()
		_ = msg.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, testdata.Block1Hash))
		channel.SubscribeNextInventoryCalls()[0].Handler(nil, msg)

		// then
		select {
		case got := <-received:
			t.Fatalf("block announcement was delivered as transaction %s", got)
		case <-time.After(100 * time.Millisecond):
		}

		// the loop still re-armed
		assert.Len(t, channel.SubscribeNextInventoryCalls(), 2)
	})
}

func Test_SentinelStop(t *testing.T) {
	t.Run("stop waits for the observer callback in flight", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		entered := make(chan struct{})
		release := make(chan struct{})
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(1, 8, func(_ *chainhash.Hash) {
			close(entered)
			<-release
		}, nil))

		orch.SubscribeNextChannelCalls()[0].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		channel.SubscribeNextInventoryCalls()[0].Handler(nil, invWithTxs(testdata.TX1Hash))
		<-entered

		// when
		stopDone := make(chan struct{})
		go func() {
			sut.Stop()
			close(stopDone)
		}()

		// then
		select {
		case <-stopDone:
			t.Fatal("Stop returned while an observer callback was still running")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)

		select {
		case <-stopDone:
		case <-time.After(time.Second):
			t.Fatal("Stop did not return after the observer callback finished")
		}

		require.Equal(t, sentinel.StateStopped, sut.State())
	})

	t.Run("announcements queued behind stop are discarded", func(t *testing.T) {
		// given
		orch := newOrchestratorMock()
		channel := newChannelMock("c-1")

		received := make(chan string, 16)
		entered := make(chan struct{})
		release := make(chan struct{})
		first := true
		sut := sentinel.New(slog.Default(), orch)
		require.NoError(t, sut.Start(1, 8, func(txHash *chainhash.Hash) {
			if first {
				first = false
				close(entered)
				<-release
			}
			received <- txHash.String()
		}, nil))

		orch.SubscribeNextChannelCalls()[0].Handler(nil, channel)
		time.Sleep(100 * time.Millisecond)

		handler := channel.SubscribeNextInventoryCalls()[0].Handler
		handler(nil, invWithTxs(testdata.TX1Hash))
		<-entered

		// queued behind the blocked worker, never started
		handler(nil, invWithTxs(testdata.TX2Hash))

		// when
		go func() {
			time.Sleep(50 * time.Millisecond)
			close(release)
		}()
		sut.Stop()

		// then
		require.Equal(t, testdata.TX1, <-received)

		select {
		case got := <-received:
			t.Fatalf("queued announcement %s was delivered after stop", got)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("stop on a stopped sentinel is a no-op", func(t *testing.T) {
		sut := sentinel.New(slog.Default(), newOrchestratorMock())

		sut.Stop()
		require.Equal(t, sentinel.StateStopped, sut.State())
	})
}
