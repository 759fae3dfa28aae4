package worker

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azfunc/worker-go/rpc"
)

func TestPipe_DeliversInOrder(t *testing.T) {
	a, b := Pipe()
	for _, id := range []string{"one", "two", "three"} {
		require.NoError(t, a.Send(&rpc.StreamingMessage{RequestID: id}))
	}
	for _, id := range []string{"one", "two", "three"} {
		msg, err := b.Recv()
		require.NoError(t, err)
		require.Equal(t, id, msg.RequestID)
	}

	require.NoError(t, b.Send(&rpc.StreamingMessage{RequestID: "back"}))
	msg, err := a.Recv()
	require.NoError(t, err)
	require.Equal(t, "back", msg.RequestID)
}

func TestPipe_CloseUnblocksRecv(t *testing.T) {
	a, b := Pipe()
	errs := make(chan error, 1)
	go func() {
		_, err := b.Recv()
		errs <- err
	}()

	require.NoError(t, a.Close())
	select {
	case err := <-errs:
		require.ErrorIs(t, err, io.EOF)
	case <-time.After(frameTimeout):
		t.Fatal("Recv did not unblock")
	}
}

func TestPipe_SendAfterClose(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, b.Close())
	require.ErrorIs(t, a.Send(&rpc.StreamingMessage{}), io.ErrClosedPipe)
	require.ErrorIs(t, b.Send(&rpc.StreamingMessage{}), io.ErrClosedPipe)
}

func TestPipe_DrainsBufferedFramesBeforeEOF(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, a.Send(&rpc.StreamingMessage{RequestID: "one"}))
	require.NoError(t, a.Send(&rpc.StreamingMessage{RequestID: "two"}))
	require.NoError(t, a.Close())

	msg, err := b.Recv()
	require.NoError(t, err)
	require.Equal(t, "one", msg.RequestID)
	msg, err = b.Recv()
	require.NoError(t, err)
	require.Equal(t, "two", msg.RequestID)
	_, err = b.Recv()
	require.ErrorIs(t, err, io.EOF)
}
