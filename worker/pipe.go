package worker

import (
	"io"
	"sync"

	"github.com/azfunc/worker-go/rpc"
)

const pipeBuffer = 64

// Pipe returns a connected pair of in-memory transports. Frames sent on one
// end arrive on the other in order. Closing either end closes the pair:
// buffered frames are still delivered, after which Recv reports [io.EOF] and
// Send fails with [io.ErrClosedPipe].
//
// Pipe is intended for tests and for hosting the engine in-process without a
// network hop.
func Pipe() (Transport, Transport) {
	shared := &pipeShared{done: make(chan struct{})}
	ab := make(chan *rpc.StreamingMessage, pipeBuffer)
	ba := make(chan *rpc.StreamingMessage, pipeBuffer)
	a := &pipeTransport{shared: shared, in: ba, out: ab}
	b := &pipeTransport{shared: shared, in: ab, out: ba}
	return a, b
}

type pipeShared struct {
	done chan struct{}
	once sync.Once
}

type pipeTransport struct {
	shared *pipeShared
	in     <-chan *rpc.StreamingMessage
	out    chan<- *rpc.StreamingMessage
}

var _ Transport = (*pipeTransport)(nil)

func (p *pipeTransport) Recv() (*rpc.StreamingMessage, error) {
	// Drain buffered frames before reporting closure.
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.shared.done:
		select {
		case msg := <-p.in:
			return msg, nil
		default:
			return nil, io.EOF
		}
	}
}

func (p *pipeTransport) Send(msg *rpc.StreamingMessage) error {
	select {
	case <-p.shared.done:
		return io.ErrClosedPipe
	default:
	}
	select {
	case p.out <- msg:
		return nil
	case <-p.shared.done:
		return io.ErrClosedPipe
	}
}

func (p *pipeTransport) Close() error {
	p.shared.once.Do(func() { close(p.shared.done) })
	return nil
}
