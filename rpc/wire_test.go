package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestMarshalGolden(t *testing.T) {
	// StartStream is the first frame on the wire; its encoding must match the
	// host schema byte for byte.
	b, err := Marshal(&StreamingMessage{
		RequestID: "r",
		Content:   &StartStream{WorkerID: "w"},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x0a, 0x01, 'r', // request_id(1) = "r"
		0xa2, 0x01, 0x03, // start_stream(20), 3 bytes
		0x12, 0x01, 'w', // worker_id(2) = "w"
	}, b)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		msg  *StreamingMessage
	}{
		{
			name: "StartStream",
			msg:  &StreamingMessage{RequestID: "rid", Content: &StartStream{WorkerID: "worker-1"}},
		},
		{
			name: "WorkerInitRequest",
			msg: &StreamingMessage{
				RequestID: "init-1",
				Content: &WorkerInitRequest{
					HostVersion:   "4.28.0",
					Capabilities:  map[string]string{"RpcHttpBodyOnly": "true", "TypedDataCollection": "true"},
					LogCategories: map[string]Level{"Function.Echo": LevelInformation, "Worker": LevelNone},
				},
			},
		},
		{
			name: "WorkerInitResponse",
			msg: &StreamingMessage{
				RequestID: "init-1",
				Content: &WorkerInitResponse{
					WorkerVersion: "1.2.3",
					Capabilities:  map[string]string{"WorkerStatus": "true"},
					Result:        &StatusResult{Status: StatusSuccess},
				},
			},
		},
		{
			name: "Heartbeat",
			msg:  &StreamingMessage{Content: &WorkerHeartbeat{}},
		},
		{
			name: "WorkerTerminateNoGrace",
			msg:  &StreamingMessage{RequestID: "t", Content: &WorkerTerminate{}},
		},
		{
			name: "WorkerStatus",
			msg:  &StreamingMessage{RequestID: "s", Content: &WorkerStatusResponse{}},
		},
		{
			name: "FileChange",
			msg: &StreamingMessage{
				Content: &FileChangeEventRequest{Type: FileChangeRenamed, FullPath: "/home/site/wwwroot/f.dll", Name: "f.dll"},
			},
		},
		{
			name: "WorkerActionResponse",
			msg: &StreamingMessage{
				Content: &WorkerActionResponse{Action: WorkerActionRestart, Reason: "unexpected frame"},
			},
		},
		{
			name: "EnvironmentReload",
			msg: &StreamingMessage{
				RequestID: "env-1",
				Content: &FunctionEnvironmentReloadRequest{
					EnvironmentVariables: map[string]string{"AzureWebJobsStorage": "UseDevelopmentStorage=true", "WEBSITE_SITE_NAME": "demo"},
				},
			},
		},
		{
			name: "EnvironmentReloadResponse",
			msg: &StreamingMessage{
				RequestID: "env-1",
				Content: &FunctionEnvironmentReloadResponse{
					Result: &StatusResult{Status: StatusFailure, Result: "timed out", Exception: &Exception{Message: "quiesce timeout"}},
				},
			},
		},
		{
			name: "FunctionLoadRequest",
			msg: &StreamingMessage{
				RequestID: "load-1",
				Content: &FunctionLoadRequest{
					FunctionID: "fn-1",
					Metadata: &FunctionMetadata{
						Name:       "Echo",
						Directory:  "/home/site/wwwroot/Echo",
						ScriptFile: "worker",
						EntryPoint: "echo",
						Bindings: map[string]*BindingInfo{
							"req":     {Type: "httpTrigger", Direction: DirectionIn, DataType: DataTypeString},
							"$return": {Type: "http", Direction: DirectionOut},
						},
					},
					ManagedDependencyEnabled: true,
				},
			},
		},
		{
			name: "FunctionLoadResponse",
			msg: &StreamingMessage{
				RequestID: "load-1",
				Content: &FunctionLoadResponse{
					FunctionID: "fn-1",
					Result:     &StatusResult{Status: StatusFailure, Result: "no handler registered for Echo"},
				},
			},
		},
		{
			name: "InvocationRequest",
			msg: &StreamingMessage{
				RequestID: "inv-1",
				Content: &InvocationRequest{
					InvocationID: "1f8b24ce",
					FunctionID:   "fn-1",
					InputData: []*ParameterBinding{
						{Name: "req", Data: &TypedData{Value: TypedString("hello")}},
						{Name: "blob", Data: &TypedData{Value: TypedBytes{0x00, 0x01}}},
					},
					TriggerMetadata: map[string]*TypedData{
						"Query":   {Value: TypedJSON(`{"name":"w"}`)},
						"Count":   {Value: TypedInt(-3)},
						"Percent": {Value: TypedDouble(99.5)},
					},
				},
			},
		},
		{
			name: "InvocationCancelNoGrace",
			msg: &StreamingMessage{
				RequestID: "c-1",
				Content:   &InvocationCancel{InvocationID: "1f8b24ce"},
			},
		},
		{
			name: "InvocationResponse",
			msg: &StreamingMessage{
				RequestID: "inv-1",
				Content: &InvocationResponse{
					InvocationID: "1f8b24ce",
					OutputData:   []*ParameterBinding{{Name: "out", Data: &TypedData{Value: TypedStream{0xde, 0xad}}}},
					ReturnValue:  &TypedData{Value: TypedString("HELLO")},
					Result:       &StatusResult{Status: StatusSuccess},
				},
			},
		},
		{
			name: "Log",
			msg: &StreamingMessage{
				Content: &Log{
					InvocationID: "1f8b24ce",
					Category:     "Function.Echo",
					Level:        LevelWarning,
					Message:      "slow invocation",
					EventID:      "1",
					Exception:    &Exception{Message: "boom", StackTrace: "at echo", Source: "handler"},
					Properties:   `{"elapsed_ms":1503}`,
				},
			},
		},
		{
			name: "HTTPValue",
			msg: &StreamingMessage{
				RequestID: "inv-2",
				Content: &InvocationResponse{
					InvocationID: "http-1",
					ReturnValue: &TypedData{Value: &HTTP{
						Method:     "POST",
						URL:        "https://example.com/api/echo?name=w",
						Headers:    map[string]string{"content-type": "text/plain"},
						Body:       &TypedData{Value: TypedString("hello")},
						RawBody:    &TypedData{Value: TypedBytes("hello")},
						Params:     map[string]string{"name": "w"},
						Query:      map[string]string{"verbose": "1"},
						StatusCode: "200",
						Identities: []*ClaimsIdentity{{
							AuthenticationType: &NullableString{Value: "aad"},
							NameClaimType:      &NullableString{},
							Claims:             []*Claim{{Type: "role", Value: "admin"}},
						}},
						Cookies: []*HTTPCookie{{
							Name:     "session",
							Value:    "abc",
							Domain:   &NullableString{Value: "example.com"},
							Path:     &NullableString{Value: "/"},
							Secure:   &NullableBool{Value: true},
							HTTPOnly: &NullableBool{Value: false},
							SameSite: SameSiteStrict,
							MaxAge:   &NullableDouble{Value: 0},
						}},
						EnableContentNegotiation: true,
					}},
					Result: &StatusResult{Status: StatusSuccess},
				},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Marshal(tc.msg)
			require.NoError(t, err)
			decoded, err := Unmarshal(b)
			require.NoError(t, err)
			require.Equal(t, tc.msg, decoded)
		})
	}
}

func TestGracePeriodRoundTrip(t *testing.T) {
	// Duration fields carry protobuf well-known types; compare through
	// AsDuration rather than structurally.
	b, err := Marshal(&StreamingMessage{
		RequestID: "t",
		Content:   &WorkerTerminate{GracePeriod: durationpb.New(5 * time.Second)},
	})
	require.NoError(t, err)
	decoded, err := Unmarshal(b)
	require.NoError(t, err)
	term := decoded.Content.(*WorkerTerminate)
	require.NotNil(t, term.GracePeriod)
	require.Equal(t, 5*time.Second, term.GracePeriod.AsDuration())

	b, err = Marshal(&StreamingMessage{
		RequestID: "c",
		Content:   &InvocationCancel{InvocationID: "inv", GracePeriod: durationpb.New(1500 * time.Millisecond)},
	})
	require.NoError(t, err)
	decoded, err = Unmarshal(b)
	require.NoError(t, err)
	cancel := decoded.Content.(*InvocationCancel)
	require.Equal(t, "inv", cancel.InvocationID)
	require.NotNil(t, cancel.GracePeriod)
	require.Equal(t, 1500*time.Millisecond, cancel.GracePeriod.AsDuration())
}

func TestCookieExpiresRoundTrip(t *testing.T) {
	expires := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	cookie := &HTTPCookie{
		Name:    "session",
		Value:   "abc",
		Expires: &NullableTimestamp{Value: timestamppb.New(expires)},
	}
	b, err := marshalHTTPCookie(cookie)
	require.NoError(t, err)
	decoded, err := parseHTTPCookie(b)
	require.NoError(t, err)
	require.NotNil(t, decoded.Expires)
	require.NotNil(t, decoded.Expires.Value)
	require.True(t, decoded.Expires.Value.AsTime().Equal(expires))
}

func TestMarshalDeterministic(t *testing.T) {
	msg := &StreamingMessage{
		Content: &WorkerInitRequest{
			Capabilities: map[string]string{"b": "2", "a": "1", "c": "3", "d": "4"},
		},
	}
	first, err := Marshal(msg)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Marshal(msg)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	b, err := Marshal(&StreamingMessage{RequestID: "r", Content: &WorkerHeartbeat{}})
	require.NoError(t, err)
	// A varint field this schema does not define.
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	decoded, err := Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, "r", decoded.RequestID)
	require.Equal(t, &WorkerHeartbeat{}, decoded.Content)
}

func TestUnmarshalUnknownContent(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldRequestID, protowire.BytesType)
	b = protowire.AppendString(b, "r")
	// Content number 23 is not modeled by this worker.
	b = protowire.AppendTag(b, 23, protowire.BytesType)
	b = protowire.AppendBytes(b, nil)

	decoded, err := Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, "r", decoded.RequestID)
	require.Nil(t, decoded.Content)
}

func TestUnmarshalTruncated(t *testing.T) {
	b, err := Marshal(&StreamingMessage{
		RequestID: "r",
		Content:   &InvocationRequest{InvocationID: "abc", FunctionID: "fn"},
	})
	require.NoError(t, err)
	_, err = Unmarshal(b[:len(b)-2])
	require.Error(t, err)
}

func TestTypedIntZigZag(t *testing.T) {
	b, err := marshalTypedData(&TypedData{Value: TypedInt(-1)})
	require.NoError(t, err)
	// sint64 -1 zigzag-encodes to 1.
	require.Equal(t, []byte{0x30, 0x01}, b)

	d, err := parseTypedData(b)
	require.NoError(t, err)
	require.Equal(t, TypedInt(-1), d.Value)
}

func TestTypedDataEmpty(t *testing.T) {
	b, err := marshalTypedData(&TypedData{})
	require.NoError(t, err)
	require.Empty(t, b)

	d, err := parseTypedData(b)
	require.NoError(t, err)
	require.Nil(t, d.Value)
}

func TestTypedDataZeroVariants(t *testing.T) {
	// A set variant survives a round trip even at its zero value.
	for _, v := range []TypedValue{TypedString(""), TypedJSON(""), TypedInt(0), TypedDouble(0)} {
		b, err := marshalTypedData(&TypedData{Value: v})
		require.NoError(t, err)
		require.NotEmpty(t, b)
		d, err := parseTypedData(b)
		require.NoError(t, err)
		require.Equal(t, v, d.Value)
	}
}

func TestNullablePresence(t *testing.T) {
	withFlag := &HTTPCookie{Name: "a", Secure: &NullableBool{Value: false}}
	without := &HTTPCookie{Name: "a"}

	bWith, err := marshalHTTPCookie(withFlag)
	require.NoError(t, err)
	bWithout, err := marshalHTTPCookie(without)
	require.NoError(t, err)
	require.NotEqual(t, bWith, bWithout)

	decoded, err := parseHTTPCookie(bWith)
	require.NoError(t, err)
	require.NotNil(t, decoded.Secure)
	require.False(t, decoded.Secure.Value)

	decoded, err = parseHTTPCookie(bWithout)
	require.NoError(t, err)
	require.Nil(t, decoded.Secure)
}

func TestCodec(t *testing.T) {
	c := Codec{}
	require.Equal(t, "proto", c.Name())

	msg := &StreamingMessage{RequestID: "r", Content: &WorkerHeartbeat{}}
	b, err := c.Marshal(msg)
	require.NoError(t, err)

	var out StreamingMessage
	require.NoError(t, c.Unmarshal(b, &out))
	require.Equal(t, msg, &out)

	_, err = c.Marshal(struct{}{})
	require.ErrorContains(t, err, "cannot marshal")
	require.ErrorContains(t, c.Unmarshal(b, &struct{}{}), "cannot unmarshal")
}
