package worker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/azfunc/worker-go/rpc"
)

const (
	// DefaultMaxMessageSize is the inbound and outbound frame size cap
	// applied when [DialOptions.MaxMessageSize] is zero.
	DefaultMaxMessageSize = 1<<31 - 1

	defaultDialTimeout = 10 * time.Second
)

// Transport moves envelope frames between the worker and the host. The engine
// drives it with a single receiving goroutine; Send may be called from any
// number of goroutines and implementations must serialize physical writes so
// frames never interleave.
//
// Closing the transport is terminal: pending Recv calls unblock with an
// error and subsequent Send calls fail.
type Transport interface {
	// Recv blocks until the next inbound frame arrives or the stream
	// closes. A closed stream is reported as [io.EOF].
	Recv() (*rpc.StreamingMessage, error)
	// Send writes one frame. Safe for concurrent use.
	Send(*rpc.StreamingMessage) error
	// Close tears down the stream and its connection.
	Close() error
}

// DialOptions configure [Dial].
type DialOptions struct {
	// Host to connect to. Required.
	Host string
	// Port to connect to. Required.
	Port int
	// MaxMessageSize caps inbound and outbound frame sizes in bytes.
	// Defaults to [DefaultMaxMessageSize].
	MaxMessageSize int
}

// Dial connects to the host's event stream endpoint and opens the
// bidirectional stream. The stream stays bound to ctx: cancelling it tears
// the stream down. If ctx carries no deadline, connection establishment is
// bounded by a ten second timeout; the stream itself has no deadline.
func Dial(ctx context.Context, options DialOptions) (Transport, error) {
	if options.Host == "" {
		return nil, fmt.Errorf("dial: no host")
	}
	if options.Port <= 0 {
		return nil, fmt.Errorf("dial: no port")
	}
	size := options.MaxMessageSize
	if size == 0 {
		size = DefaultMaxMessageSize
	}
	addr := net.JoinHostPort(options.Host, strconv.Itoa(options.Port))

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, defaultDialTimeout)
		defer cancel()
	}
	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(rpc.Codec{}),
			grpc.MaxCallRecvMsgSize(size),
			grpc.MaxCallSendMsgSize(size),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	stream, err := conn.NewStream(ctx, &rpc.EventStreamDesc, rpc.EventStreamMethod)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	return &grpcTransport{conn: conn, stream: stream}, nil
}

type grpcTransport struct {
	conn   *grpc.ClientConn
	stream grpc.ClientStream

	sendMu sync.Mutex
}

var _ Transport = (*grpcTransport)(nil)

func (t *grpcTransport) Recv() (*rpc.StreamingMessage, error) {
	var msg rpc.StreamingMessage
	if err := t.stream.RecvMsg(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (t *grpcTransport) Send(msg *rpc.StreamingMessage) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	return t.stream.SendMsg(msg)
}

func (t *grpcTransport) Close() error {
	t.sendMu.Lock()
	_ = t.stream.CloseSend()
	t.sendMu.Unlock()
	return t.conn.Close()
}
