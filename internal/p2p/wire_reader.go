package p2p

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/libsv/go-p2p/wire"
)

// WireReader reads wire messages off a stream, capping the size of a single
// message. Commands the wire package does not know are skipped instead of
// surfacing as errors.
type WireReader struct {
	bufio.Reader
	limitedReader *io.LimitedReader
	maxMsgSize    int64
}

func NewWireReader(r io.Reader, maxMsgSize int64) *WireReader {
	return NewWireReaderSize(r, maxMsgSize, defaultReadBufferSize)
}

func NewWireReaderSize(r io.Reader, maxMsgSize int64, buffSize int) *WireReader {
	lr := &io.LimitedReader{R: r, N: maxMsgSize}

	return &WireReader{
		Reader:        *bufio.NewReaderSize(lr, buffSize),
		limitedReader: lr,
		maxMsgSize:    maxMsgSize,
	}
}

// ReadNextMsg blocks until a complete message arrives or ctx is canceled.
func (r *WireReader) ReadNextMsg(ctx context.Context, pver uint32, network wire.BitcoinNet) (wire.Message, error) {
	result := make(chan readResult, 1)
	go r.readMsg(pver, network, result)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case readMsg := <-result:
		return readMsg.msg, readMsg.err
	}
}

type readResult struct {
	msg wire.Message
	err error
}

func (r *WireReader) readMsg(pver uint32, network wire.BitcoinNet, result chan<- readResult) {
	for {
		msg, _, err := wire.ReadMessage(r, pver, network)
		r.limitedReader.N = r.maxMsgSize

		if err != nil && strings.Contains(err.Error(), "unhandled command [") {
			// unknown message type, skip it
			continue
		}

		result <- readResult{msg, err}
		return
	}
}
