package p2p

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/libsv/go-p2p/wire"
)

var ErrHandshakeTimeout = errors.New("handshake timed out")

// handshake performs the outbound side of the version exchange on a fresh
// connection:
//
//  1. send VER
//  2. answer the node's VER with VERACK
//  3. wait for the node's VERACK
//
// The exchange runs under the connection timeout as a read/write deadline,
// which is cleared again before the connection is handed to a channel.
func (o *Orchestrator) handshake(conn net.Conn, address string) error {
	l := o.logger.With(slog.String("address", address))

	// not every conn implementation supports deadlines, the loop below
	// checks the clock as well
	deadline := time.Now().Add(o.connectionTimeout)
	_ = conn.SetDeadline(deadline)
	defer func() {
		_ = conn.SetDeadline(time.Time{})
	}()

	err := o.sendVersion(conn, address)
	if err != nil {
		return err
	}
	l.Debug("Handshake: sent VER")

	receivedVerAck := false
	sentVerAck := false
	for !receivedVerAck || !sentVerAck {
		if time.Now().After(deadline) {
			return ErrHandshakeTimeout
		}

		msg, _, err := wire.ReadMessage(conn, wire.ProtocolVersion, o.network)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch msg.Command() {
		case wire.CmdVerAck:
			l.Debug("Handshake: received VERACK")
			receivedVerAck = true

		case wire.CmdVersion:
			l.Debug("Handshake: received VER")
			if sentVerAck {
				l.Warn("Handshake: received VER after sending VERACK")
				continue
			}

			err = wire.WriteMessage(conn, wire.NewMsgVerAck(), wire.ProtocolVersion, o.network)
			if err != nil {
				return fmt.Errorf("write VERACK: %w", err)
			}

			l.Debug("Handshake: sent VERACK")
			sentVerAck = true

		default:
			l.Warn("Handshake: ignoring unexpected message", slogUpperString(commandKey, msg.Command()))
		}
	}

	return nil
}

func (o *Orchestrator) sendVersion(conn net.Conn, address string) error {
	me := wire.NewNetAddress(&net.TCPAddr{IP: nil, Port: 0}, o.servicesFlag)

	nAddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return fmt.Errorf("resolve address: %w", err)
	}
	you := wire.NewNetAddress(nAddr, wire.SFNodeNetwork)

	nonce, err := wire.RandomUint64()
	if err != nil {
		o.logger.Warn("Handshake: failed to generate nonce, sending VER with 0 nonce", slog.String(errKey, err.Error()))
	}

	const lastBlock = int32(0)
	verMsg := wire.NewMsgVersion(me, you, nonce, lastBlock)

	if o.userAgentName != nil && o.userAgentVersion != nil {
		err = verMsg.AddUserAgent(*o.userAgentName, *o.userAgentVersion)
		if err != nil {
			o.logger.Warn("Handshake: failed to add user agent, sending VER without it", slog.String(errKey, err.Error()))
		}
	}

	err = wire.WriteMessage(conn, verMsg, wire.ProtocolVersion, o.network)
	if err != nil {
		return fmt.Errorf("write VER: %w", err)
	}

	return nil
}
