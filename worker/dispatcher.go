package worker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/azfunc/worker-go/rpc"
)

// readLoop consumes inbound frames in arrival order. It only classifies and
// dispatches: invocation work always runs on its own goroutine, so a slow
// handler can never stall the stream.
func (w *Worker) readLoop(ctx context.Context) error {
	for {
		msg, err := w.transport.Recv()
		if err != nil {
			if w.isClosed() || errors.Is(err, io.EOF) {
				w.shutdown()
				return errTerminated
			}
			return fmt.Errorf("receive frame: %w", err)
		}
		if err := w.route(ctx, msg); err != nil {
			return err
		}
	}
}

// route dispatches one inbound frame by content kind. The variant set is
// closed: a frame kind this worker can only produce, or one it does not
// model at all, is a protocol error that kills the stream.
func (w *Worker) route(ctx context.Context, msg *rpc.StreamingMessage) error {
	switch content := msg.Content.(type) {
	case *rpc.WorkerInitRequest:
		return w.handleInit(msg.RequestID, content)
	case *rpc.FunctionLoadRequest:
		return w.handleLoad(msg.RequestID, content)
	case *rpc.InvocationRequest:
		w.startInvocation(msg.RequestID, content)
	case *rpc.InvocationCancel:
		w.cancelInvocation(content)
	case *rpc.FunctionEnvironmentReloadRequest:
		if w.State() == StateAwaitingInit {
			return w.protocolError("environment reload request before init")
		}
		go w.handleReload(ctx, msg.RequestID, content)
	case *rpc.WorkerTerminate:
		go w.handleTerminate(content)
	case *rpc.WorkerStatusRequest:
		w.handleStatus(msg.RequestID)
	case *rpc.FileChangeEventRequest:
		w.handleFileChange(content)
	case *rpc.WorkerHeartbeat:
		// Keep-alives carry nothing and need no reply.
	case *rpc.StartStream,
		*rpc.WorkerInitResponse,
		*rpc.WorkerStatusResponse,
		*rpc.WorkerActionResponse,
		*rpc.FunctionLoadResponse,
		*rpc.InvocationResponse,
		*rpc.FunctionEnvironmentReloadResponse,
		*rpc.Log:
		return w.protocolError("unexpected %T frame from host", content)
	case nil:
		return w.protocolError("frame with no recognized content")
	default:
		return w.protocolError("unhandled frame kind %T", content)
	}
	return nil
}

// writeLoop is the single consumer of the outbox; it serializes every
// outbound frame onto the transport. A nil frame is the drain marker: it
// closes the stream once everything queued ahead of it has been sent.
func (w *Worker) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-w.outbox:
			if msg == nil {
				w.shutdown()
				return errTerminated
			}
			if err := w.transport.Send(msg); err != nil {
				if w.isClosed() {
					return errTerminated
				}
				return fmt.Errorf("send frame: %w", err)
			}
		case <-w.closed:
			return errTerminated
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
