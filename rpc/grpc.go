package rpc

import (
	"fmt"

	"google.golang.org/grpc"
)

// EventStreamMethod is the full gRPC method path of the host's bidirectional
// event stream.
const EventStreamMethod = "/AzureFunctionsRpcMessages.FunctionRpc/EventStream"

// EventStreamDesc describes the event stream for [grpc.ClientConn.NewStream].
// Both directions stream for the lifetime of the worker.
var EventStreamDesc = grpc.StreamDesc{
	StreamName:    "EventStream",
	ClientStreams: true,
	ServerStreams: true,
}

// Codec is a [google.golang.org/grpc/encoding.Codec] that moves
// [StreamingMessage] values over a gRPC stream using this package's wire
// encoding. Its name is "proto" so frames travel with the standard
// application/grpc+proto content subtype the host expects.
type Codec struct{}

// Name implements the grpc encoding.Codec interface.
func (Codec) Name() string { return "proto" }

// Marshal implements the grpc encoding.Codec interface.
func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*StreamingMessage)
	if !ok {
		return nil, fmt.Errorf("cannot marshal %T, expected %T", v, m)
	}
	return Marshal(m)
}

// Unmarshal implements the grpc encoding.Codec interface.
func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*StreamingMessage)
	if !ok {
		return fmt.Errorf("cannot unmarshal into %T, expected %T", v, m)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
