package p2p_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/cbeuw/connutil"
	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/txsentinel/internal/p2p"
	"github.com/bitcoin-sv/txsentinel/pkg/sentinel"
)

type channelEvent struct {
	err     error
	channel sentinel.ChannelI
}

// nodeDialer hands out in-memory connections and plays the node side of the
// handshake on each of them.
func nodeDialer(t *testing.T) p2p.DialFunc {
	t.Helper()

	return func(_ context.Context, _, _ string) (net.Conn, error) {
		orchConn, nodeConn := connutil.AsyncPipe()
		go nodeHandshake(t, nodeConn)

		return orchConn, nil
	}
}

func nextChannelEvent(t *testing.T, sut *p2p.Orchestrator) channelEvent {
	t.Helper()

	received := make(chan channelEvent, 1)
	sut.SubscribeNextChannel(func(err error, channel sentinel.ChannelI) {
		received <- channelEvent{err: err, channel: channel}
	})

	select {
	case ev := <-received:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel event")
		return channelEvent{}
	}
}

func beginConnecting(t *testing.T, sut *p2p.Orchestrator) {
	t.Helper()

	var startErr error
	started := make(chan struct{})
	sut.BeginConnecting(func(err error) {
		startErr = err
		close(started)
	})

	select {
	case <-started:
		require.NoError(t, startErr)
	case <-time.After(2 * time.Second):
		t.Fatal("BeginConnecting did not report")
	}
}

func Test_BeginConnecting(t *testing.T) {
	t.Run("reports initiation success exactly once", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(nodeDialer(t)),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)

		// when / then
		beginConnecting(t, sut)
	})

	t.Run("no addresses - reports initiation failure", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, nil)
		defer sut.Shutdown()

		// when
		var startErr error
		sut.BeginConnecting(func(err error) { startErr = err })

		// then
		require.ErrorIs(t, startErr, p2p.ErrNoPeerAddresses)
	})

	t.Run("second call fails", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(nodeDialer(t)),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		// when
		var startErr error
		sut.BeginConnecting(func(err error) { startErr = err })

		// then
		require.ErrorIs(t, startErr, p2p.ErrAlreadyConnecting)
	})
}

func Test_ChannelEstablishment(t *testing.T) {
	t.Run("established channel reaches the subscriber", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(nodeDialer(t)),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		// when
		ev := nextChannelEvent(t, sut)

		// then
		require.NoError(t, ev.err)
		require.NotNil(t, ev.channel)
		require.Equal(t, channelAddr, ev.channel.String())
		require.NotEmpty(t, ev.channel.ID())
	})

	t.Run("failed dial surfaces as an error event", func(t *testing.T) {
		// given
		dialErr := errors.New("connection refused")
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(func(_ context.Context, _, _ string) (net.Conn, error) {
				return nil, dialErr
			}),
			p2p.WithRetryInterval(10*time.Millisecond, 20*time.Millisecond),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		// when
		ev := nextChannelEvent(t, sut)

		// then
		require.ErrorIs(t, ev.err, dialErr)
		require.Nil(t, ev.channel)
	})

	t.Run("events arriving before a subscriber are queued", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(nodeDialer(t)),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		// give the connector time to establish before anyone subscribes
		time.Sleep(200 * time.Millisecond)

		// when
		ev := nextChannelEvent(t, sut)

		// then
		require.NoError(t, ev.err)
		require.NotNil(t, ev.channel)
	})

	t.Run("a dead channel is dialed again as a fresh channel", func(t *testing.T) {
		// given
		var mu sync.Mutex
		var nodeConns []net.Conn

		dialer := func(_ context.Context, _, _ string) (net.Conn, error) {
			orchConn, nodeConn := connutil.AsyncPipe()
			mu.Lock()
			nodeConns = append(nodeConns, nodeConn)
			mu.Unlock()
			go nodeHandshake(t, nodeConn)

			return orchConn, nil
		}

		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(dialer),
			p2p.WithRetryInterval(10*time.Millisecond, 20*time.Millisecond),
		)
		defer sut.Shutdown()

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		first := nextChannelEvent(t, sut)
		require.NoError(t, first.err)

		// when
		// the node drops the connection
		mu.Lock()
		require.NotEmpty(t, nodeConns)
		require.NoError(t, nodeConns[0].Close())
		mu.Unlock()

		second := nextChannelEvent(t, sut)

		// then
		require.NoError(t, second.err)
		require.NotEqual(t, first.channel.ID(), second.channel.ID())
	})
}

func Test_OrchestratorShutdown(t *testing.T) {
	t.Run("shutdown closes established channels", func(t *testing.T) {
		// given
		sut := p2p.NewOrchestrator(slog.Default(), bitcoinNet, []string{channelAddr},
			p2p.WithDialer(nodeDialer(t)),
		)

		sut.SetMaxOutbound(1)
		beginConnecting(t, sut)

		ev := nextChannelEvent(t, sut)
		require.NoError(t, ev.err)

		channel, ok := ev.channel.(*p2p.Channel)
		require.True(t, ok)

		// when
		sut.Shutdown()

		// then
		select {
		case <-channel.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("channel was not closed on shutdown")
		}
	})
}

// nodeHandshake plays the node side of the version exchange:
//
//  1. wait for VER
//  2. send VERACK
//  3. send VER
//  4. wait for VERACK
func nodeHandshake(t *testing.T, conn net.Conn) {
	t.Helper()

	msg, _, err := wire.ReadMessage(conn, wire.ProtocolVersion, bitcoinNet)
	if err != nil {
		return
	}
	if msg.Command() != wire.CmdVersion {
		return
	}

	err = wire.WriteMessage(conn, wire.NewMsgVerAck(), wire.ProtocolVersion, bitcoinNet)
	if err != nil {
		return
	}

	me := wire.NewNetAddress(&net.TCPAddr{IP: nil, Port: 0}, wire.SFNodeNetwork)

	nAddr, _ := net.ResolveTCPAddr("tcp", "localhost:8876")
	you := wire.NewNetAddress(nAddr, wire.SFNodeNetwork)

	nonce, err := wire.RandomUint64()
	if err != nil {
		return
	}

	err = wire.WriteMessage(conn, wire.NewMsgVersion(me, you, nonce, 0), wire.ProtocolVersion, bitcoinNet)
	if err != nil {
		return
	}

	// wait for VERACK
	for {
		msg, _, err = wire.ReadMessage(conn, wire.ProtocolVersion, bitcoinNet)
		if err != nil {
			return
		}
		if msg.Command() == wire.CmdVerAck {
			return
		}
	}
}
