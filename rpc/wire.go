package rpc

import (
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers of [StreamingMessage]. The content numbers identify the oneof
// variant; they are fixed by the host schema and must never change.
const (
	fieldRequestID protowire.Number = 1

	fieldLog                       protowire.Number = 2
	fieldInvocationRequest         protowire.Number = 4
	fieldInvocationResponse        protowire.Number = 5
	fieldFileChangeEventRequest    protowire.Number = 6
	fieldWorkerActionResponse      protowire.Number = 7
	fieldFunctionLoadRequest       protowire.Number = 8
	fieldFunctionLoadResponse      protowire.Number = 9
	fieldWorkerStatusRequest       protowire.Number = 12
	fieldWorkerStatusResponse      protowire.Number = 13
	fieldWorkerTerminate           protowire.Number = 14
	fieldWorkerHeartbeat           protowire.Number = 15
	fieldWorkerInitResponse        protowire.Number = 16
	fieldWorkerInitRequest         protowire.Number = 17
	fieldStartStream               protowire.Number = 20
	fieldInvocationCancel          protowire.Number = 21
	fieldEnvironmentReloadRequest  protowire.Number = 25
	fieldEnvironmentReloadResponse protowire.Number = 26
)

// Marshal encodes a [StreamingMessage] into protobuf wire format. Scalar
// fields at their zero value are omitted, map keys are emitted in sorted
// order, and a set oneof variant is always emitted even when empty, all
// matching canonical proto3 encoders.
func Marshal(m *StreamingMessage) ([]byte, error) {
	var b []byte
	b = appendString(b, fieldRequestID, m.RequestID)
	if m.Content != nil {
		num, sub, err := marshalContent(m.Content)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, num, sub)
	}
	return b, nil
}

// Unmarshal decodes a [StreamingMessage] from protobuf wire format. Fields
// this schema does not model are skipped. A frame whose content variant is
// unknown decodes with a nil Content; the caller decides whether that is an
// error.
func Unmarshal(data []byte) (*StreamingMessage, error) {
	m := &StreamingMessage{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num == fieldRequestID && typ == protowire.BytesType {
			v, rest, err := consumeString(b)
			if err != nil {
				return nil, err
			}
			m.RequestID = v
			b = rest
			continue
		}
		if typ == protowire.BytesType {
			raw, rest, err := consumeRawBytes(b)
			if err != nil {
				return nil, err
			}
			c, err := parseContent(num, raw)
			if err != nil {
				return nil, err
			}
			if c != nil {
				m.Content = c
			}
			b = rest
			continue
		}
		rest, err := skipField(num, typ, b)
		if err != nil {
			return nil, err
		}
		b = rest
	}
	return m, nil
}

func marshalContent(c Content) (protowire.Number, []byte, error) {
	switch c := c.(type) {
	case *StartStream:
		return fieldStartStream, marshalStartStream(c), nil
	case *WorkerInitRequest:
		return fieldWorkerInitRequest, marshalWorkerInitRequest(c), nil
	case *WorkerInitResponse:
		return fieldWorkerInitResponse, marshalWorkerInitResponse(c), nil
	case *WorkerHeartbeat:
		return fieldWorkerHeartbeat, nil, nil
	case *WorkerTerminate:
		sub, err := marshalWorkerTerminate(c)
		return fieldWorkerTerminate, sub, err
	case *WorkerStatusRequest:
		return fieldWorkerStatusRequest, nil, nil
	case *WorkerStatusResponse:
		return fieldWorkerStatusResponse, nil, nil
	case *FileChangeEventRequest:
		return fieldFileChangeEventRequest, marshalFileChangeEventRequest(c), nil
	case *WorkerActionResponse:
		return fieldWorkerActionResponse, marshalWorkerActionResponse(c), nil
	case *FunctionLoadRequest:
		return fieldFunctionLoadRequest, marshalFunctionLoadRequest(c), nil
	case *FunctionLoadResponse:
		return fieldFunctionLoadResponse, marshalFunctionLoadResponse(c), nil
	case *InvocationRequest:
		sub, err := marshalInvocationRequest(c)
		return fieldInvocationRequest, sub, err
	case *InvocationResponse:
		sub, err := marshalInvocationResponse(c)
		return fieldInvocationResponse, sub, err
	case *InvocationCancel:
		sub, err := marshalInvocationCancel(c)
		return fieldInvocationCancel, sub, err
	case *Log:
		return fieldLog, marshalLog(c), nil
	case *FunctionEnvironmentReloadRequest:
		return fieldEnvironmentReloadRequest, marshalEnvironmentReloadRequest(c), nil
	case *FunctionEnvironmentReloadResponse:
		return fieldEnvironmentReloadResponse, marshalEnvironmentReloadResponse(c), nil
	default:
		return 0, nil, fmt.Errorf("unknown content variant %T", c)
	}
}

func parseContent(num protowire.Number, b []byte) (Content, error) {
	switch num {
	case fieldStartStream:
		return parseStartStream(b)
	case fieldWorkerInitRequest:
		return parseWorkerInitRequest(b)
	case fieldWorkerInitResponse:
		return parseWorkerInitResponse(b)
	case fieldWorkerHeartbeat:
		if err := parseEmpty(b); err != nil {
			return nil, err
		}
		return &WorkerHeartbeat{}, nil
	case fieldWorkerTerminate:
		return parseWorkerTerminate(b)
	case fieldWorkerStatusRequest:
		if err := parseEmpty(b); err != nil {
			return nil, err
		}
		return &WorkerStatusRequest{}, nil
	case fieldWorkerStatusResponse:
		if err := parseEmpty(b); err != nil {
			return nil, err
		}
		return &WorkerStatusResponse{}, nil
	case fieldFileChangeEventRequest:
		return parseFileChangeEventRequest(b)
	case fieldWorkerActionResponse:
		return parseWorkerActionResponse(b)
	case fieldFunctionLoadRequest:
		return parseFunctionLoadRequest(b)
	case fieldFunctionLoadResponse:
		return parseFunctionLoadResponse(b)
	case fieldInvocationRequest:
		return parseInvocationRequest(b)
	case fieldInvocationResponse:
		return parseInvocationResponse(b)
	case fieldInvocationCancel:
		return parseInvocationCancel(b)
	case fieldLog:
		return parseLog(b)
	case fieldEnvironmentReloadRequest:
		return parseEnvironmentReloadRequest(b)
	case fieldEnvironmentReloadResponse:
		return parseEnvironmentReloadResponse(b)
	default:
		// Not a content variant this worker models.
		return nil, nil
	}
}

// Append helpers. The plain variants follow proto3 field rules and omit zero
// values; presence of message fields is decided by the caller via nil checks.
// The oneof variants always emit because a set oneof arm carries presence.

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendOneofString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendOneofBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendMessage(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}

func appendProto(b []byte, num protowire.Number, m proto.Message) ([]byte, error) {
	sub, err := proto.Marshal(m)
	if err != nil {
		return nil, err
	}
	return appendMessage(b, num, sub), nil
}

func appendStringMap(b []byte, num protowire.Number, m map[string]string) []byte {
	for _, k := range sortedKeys(m) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendString(entry, 2, m[k])
		b = appendMessage(b, num, entry)
	}
	return b
}

func appendLevelMap(b []byte, num protowire.Number, m map[string]Level) []byte {
	for _, k := range sortedKeys(m) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendEnum(entry, 2, int32(m[k]))
		b = appendMessage(b, num, entry)
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Consume helpers. Each returns the decoded value and the remaining buffer.
// consumeRawBytes aliases the input; consumeBytes copies so decoded messages
// never retain transport buffers.

func consumeString(b []byte) (string, []byte, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func consumeRawBytes(b []byte) ([]byte, []byte, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func consumeBytes(b []byte) ([]byte, []byte, error) {
	v, rest, err := consumeRawBytes(b)
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, rest, nil
}

func consumeVarint(b []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func consumeFixed64(b []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) ([]byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return b[n:], nil
}

func parseEmpty(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		rest, err := skipField(num, typ, b[n:])
		if err != nil {
			return err
		}
		b = rest
	}
	return nil
}

func parseDuration(b []byte) (*durationpb.Duration, error) {
	d := &durationpb.Duration{}
	if err := proto.Unmarshal(b, d); err != nil {
		return nil, err
	}
	return d, nil
}

func parseTimestamp(b []byte) (*timestamppb.Timestamp, error) {
	ts := &timestamppb.Timestamp{}
	if err := proto.Unmarshal(b, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func parseStringMapEntry(b []byte) (string, string, error) {
	var key, value string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", "", protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			key, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			value, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return "", "", err
		}
	}
	return key, value, nil
}

func parseLevelMapEntry(b []byte) (string, Level, error) {
	var key string
	var level Level
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", 0, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			key, b, err = consumeString(b)
		case num == 2 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			level = Level(int32(v))
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return "", 0, err
		}
	}
	return key, level, nil
}

// StartStream: worker_id(2).

func marshalStartStream(m *StartStream) []byte {
	var b []byte
	b = appendString(b, 2, m.WorkerID)
	return b
}

func parseStartStream(b []byte) (*StartStream, error) {
	m := &StartStream{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 2 && typ == protowire.BytesType:
			m.WorkerID, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WorkerInitRequest: host_version(1), capabilities(2), log_categories(3).

func marshalWorkerInitRequest(m *WorkerInitRequest) []byte {
	var b []byte
	b = appendString(b, 1, m.HostVersion)
	b = appendStringMap(b, 2, m.Capabilities)
	b = appendLevelMap(b, 3, m.LogCategories)
	return b
}

func parseWorkerInitRequest(b []byte) (*WorkerInitRequest, error) {
	m := &WorkerInitRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.HostVersion, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.Capabilities == nil {
						m.Capabilities = map[string]string{}
					}
					m.Capabilities[k] = v
				}
			}
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k string
				var lvl Level
				if k, lvl, err = parseLevelMapEntry(raw); err == nil {
					if m.LogCategories == nil {
						m.LogCategories = map[string]Level{}
					}
					m.LogCategories[k] = lvl
				}
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WorkerInitResponse: worker_version(1), capabilities(2), result(3).

func marshalWorkerInitResponse(m *WorkerInitResponse) []byte {
	var b []byte
	b = appendString(b, 1, m.WorkerVersion)
	b = appendStringMap(b, 2, m.Capabilities)
	if m.Result != nil {
		b = appendMessage(b, 3, marshalStatusResult(m.Result))
	}
	return b
}

func parseWorkerInitResponse(b []byte) (*WorkerInitResponse, error) {
	m := &WorkerInitResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.WorkerVersion, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.Capabilities == nil {
						m.Capabilities = map[string]string{}
					}
					m.Capabilities[k] = v
				}
			}
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Result, err = parseStatusResult(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StatusResult: result(1), exception(2), logs(3), status(4).

func marshalStatusResult(m *StatusResult) []byte {
	var b []byte
	b = appendString(b, 1, m.Result)
	if m.Exception != nil {
		b = appendMessage(b, 2, marshalException(m.Exception))
	}
	for _, l := range m.Logs {
		b = appendMessage(b, 3, marshalLog(l))
	}
	b = appendEnum(b, 4, int32(m.Status))
	return b
}

func parseStatusResult(b []byte) (*StatusResult, error) {
	m := &StatusResult{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Result, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Exception, err = parseException(raw)
			}
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var l *Log
				if l, err = parseLog(raw); err == nil {
					m.Logs = append(m.Logs, l)
				}
			}
		case num == 4 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Status = Status(int32(v))
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Exception: stack_trace(1), message(2), source(3).

func marshalException(m *Exception) []byte {
	var b []byte
	b = appendString(b, 1, m.StackTrace)
	b = appendString(b, 2, m.Message)
	b = appendString(b, 3, m.Source)
	return b
}

func parseException(b []byte) (*Exception, error) {
	m := &Exception{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.StackTrace, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.Message, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			m.Source, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WorkerTerminate: grace_period(1).

func marshalWorkerTerminate(m *WorkerTerminate) ([]byte, error) {
	var b []byte
	if m.GracePeriod != nil {
		var err error
		b, err = appendProto(b, 1, m.GracePeriod)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func parseWorkerTerminate(b []byte) (*WorkerTerminate, error) {
	m := &WorkerTerminate{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.GracePeriod, err = parseDuration(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FileChangeEventRequest: type(1), full_path(2), name(3).

func marshalFileChangeEventRequest(m *FileChangeEventRequest) []byte {
	var b []byte
	b = appendEnum(b, 1, int32(m.Type))
	b = appendString(b, 2, m.FullPath)
	b = appendString(b, 3, m.Name)
	return b
}

func parseFileChangeEventRequest(b []byte) (*FileChangeEventRequest, error) {
	m := &FileChangeEventRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Type = FileChangeType(int32(v))
		case num == 2 && typ == protowire.BytesType:
			m.FullPath, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			m.Name, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WorkerActionResponse: action(1), reason(2).

func marshalWorkerActionResponse(m *WorkerActionResponse) []byte {
	var b []byte
	b = appendEnum(b, 1, int32(m.Action))
	b = appendString(b, 2, m.Reason)
	return b
}

func parseWorkerActionResponse(b []byte) (*WorkerActionResponse, error) {
	m := &WorkerActionResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Action = WorkerAction(int32(v))
		case num == 2 && typ == protowire.BytesType:
			m.Reason, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FunctionEnvironmentReloadRequest: environment_variables(1).

func marshalEnvironmentReloadRequest(m *FunctionEnvironmentReloadRequest) []byte {
	var b []byte
	b = appendStringMap(b, 1, m.EnvironmentVariables)
	return b
}

func parseEnvironmentReloadRequest(b []byte) (*FunctionEnvironmentReloadRequest, error) {
	m := &FunctionEnvironmentReloadRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.EnvironmentVariables == nil {
						m.EnvironmentVariables = map[string]string{}
					}
					m.EnvironmentVariables[k] = v
				}
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FunctionEnvironmentReloadResponse: result(3).

func marshalEnvironmentReloadResponse(m *FunctionEnvironmentReloadResponse) []byte {
	var b []byte
	if m.Result != nil {
		b = appendMessage(b, 3, marshalStatusResult(m.Result))
	}
	return b
}

func parseEnvironmentReloadResponse(b []byte) (*FunctionEnvironmentReloadResponse, error) {
	m := &FunctionEnvironmentReloadResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Result, err = parseStatusResult(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FunctionLoadRequest: function_id(1), metadata(2), managed_dependency_enabled(3).

func marshalFunctionLoadRequest(m *FunctionLoadRequest) []byte {
	var b []byte
	b = appendString(b, 1, m.FunctionID)
	if m.Metadata != nil {
		b = appendMessage(b, 2, marshalFunctionMetadata(m.Metadata))
	}
	b = appendBool(b, 3, m.ManagedDependencyEnabled)
	return b
}

func parseFunctionLoadRequest(b []byte) (*FunctionLoadRequest, error) {
	m := &FunctionLoadRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.FunctionID, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Metadata, err = parseFunctionMetadata(raw)
			}
		case num == 3 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.ManagedDependencyEnabled = v != 0
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FunctionLoadResponse: function_id(1), result(2), is_dependency_downloaded(3).

func marshalFunctionLoadResponse(m *FunctionLoadResponse) []byte {
	var b []byte
	b = appendString(b, 1, m.FunctionID)
	if m.Result != nil {
		b = appendMessage(b, 2, marshalStatusResult(m.Result))
	}
	b = appendBool(b, 3, m.IsDependencyDownloaded)
	return b
}

func parseFunctionLoadResponse(b []byte) (*FunctionLoadResponse, error) {
	m := &FunctionLoadResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.FunctionID, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Result, err = parseStatusResult(raw)
			}
		case num == 3 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.IsDependencyDownloaded = v != 0
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FunctionMetadata: directory(1), script_file(2), entry_point(3), name(4),
// bindings(6), is_proxy(7).

func marshalFunctionMetadata(m *FunctionMetadata) []byte {
	var b []byte
	b = appendString(b, 1, m.Directory)
	b = appendString(b, 2, m.ScriptFile)
	b = appendString(b, 3, m.EntryPoint)
	b = appendString(b, 4, m.Name)
	for _, k := range sortedKeys(m.Bindings) {
		var entry []byte
		entry = appendString(entry, 1, k)
		if info := m.Bindings[k]; info != nil {
			entry = appendMessage(entry, 2, marshalBindingInfo(info))
		}
		b = appendMessage(b, 6, entry)
	}
	b = appendBool(b, 7, m.IsProxy)
	return b
}

func parseFunctionMetadata(b []byte) (*FunctionMetadata, error) {
	m := &FunctionMetadata{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Directory, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.ScriptFile, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			m.EntryPoint, b, err = consumeString(b)
		case num == 4 && typ == protowire.BytesType:
			m.Name, b, err = consumeString(b)
		case num == 6 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k string
				var info *BindingInfo
				if k, info, err = parseBindingMapEntry(raw); err == nil {
					if m.Bindings == nil {
						m.Bindings = map[string]*BindingInfo{}
					}
					m.Bindings[k] = info
				}
			}
		case num == 7 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.IsProxy = v != 0
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func parseBindingMapEntry(b []byte) (string, *BindingInfo, error) {
	var key string
	info := &BindingInfo{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			key, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				info, err = parseBindingInfo(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return "", nil, err
		}
	}
	return key, info, nil
}

// BindingInfo: type(2), direction(3), data_type(4).

func marshalBindingInfo(m *BindingInfo) []byte {
	var b []byte
	b = appendString(b, 2, m.Type)
	b = appendEnum(b, 3, int32(m.Direction))
	b = appendEnum(b, 4, int32(m.DataType))
	return b
}

func parseBindingInfo(b []byte) (*BindingInfo, error) {
	m := &BindingInfo{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 2 && typ == protowire.BytesType:
			m.Type, b, err = consumeString(b)
		case num == 3 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Direction = Direction(int32(v))
		case num == 4 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.DataType = DataType(int32(v))
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// InvocationRequest: invocation_id(1), function_id(2), input_data(3),
// trigger_metadata(4).

func marshalInvocationRequest(m *InvocationRequest) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.InvocationID)
	b = appendString(b, 2, m.FunctionID)
	for _, p := range m.InputData {
		sub, err := marshalParameterBinding(p)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 3, sub)
	}
	for _, k := range sortedKeys(m.TriggerMetadata) {
		var entry []byte
		entry = appendString(entry, 1, k)
		if d := m.TriggerMetadata[k]; d != nil {
			sub, err := marshalTypedData(d)
			if err != nil {
				return nil, err
			}
			entry = appendMessage(entry, 2, sub)
		}
		b = appendMessage(b, 4, entry)
	}
	return b, nil
}

func parseInvocationRequest(b []byte) (*InvocationRequest, error) {
	m := &InvocationRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.InvocationID, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.FunctionID, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var p *ParameterBinding
				if p, err = parseParameterBinding(raw); err == nil {
					m.InputData = append(m.InputData, p)
				}
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k string
				var d *TypedData
				if k, d, err = parseTypedDataMapEntry(raw); err == nil {
					if m.TriggerMetadata == nil {
						m.TriggerMetadata = map[string]*TypedData{}
					}
					m.TriggerMetadata[k] = d
				}
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func parseTypedDataMapEntry(b []byte) (string, *TypedData, error) {
	var key string
	data := &TypedData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			key, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				data, err = parseTypedData(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return "", nil, err
		}
	}
	return key, data, nil
}

// InvocationCancel: grace_period(1), invocation_id(2).

func marshalInvocationCancel(m *InvocationCancel) ([]byte, error) {
	var b []byte
	if m.GracePeriod != nil {
		var err error
		b, err = appendProto(b, 1, m.GracePeriod)
		if err != nil {
			return nil, err
		}
	}
	b = appendString(b, 2, m.InvocationID)
	return b, nil
}

func parseInvocationCancel(b []byte) (*InvocationCancel, error) {
	m := &InvocationCancel{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.GracePeriod, err = parseDuration(raw)
			}
		case num == 2 && typ == protowire.BytesType:
			m.InvocationID, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// InvocationResponse: invocation_id(1), output_data(2), result(3),
// return_value(4).

func marshalInvocationResponse(m *InvocationResponse) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.InvocationID)
	for _, p := range m.OutputData {
		sub, err := marshalParameterBinding(p)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 2, sub)
	}
	if m.Result != nil {
		b = appendMessage(b, 3, marshalStatusResult(m.Result))
	}
	if m.ReturnValue != nil {
		sub, err := marshalTypedData(m.ReturnValue)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 4, sub)
	}
	return b, nil
}

func parseInvocationResponse(b []byte) (*InvocationResponse, error) {
	m := &InvocationResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.InvocationID, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var p *ParameterBinding
				if p, err = parseParameterBinding(raw); err == nil {
					m.OutputData = append(m.OutputData, p)
				}
			}
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Result, err = parseStatusResult(raw)
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.ReturnValue, err = parseTypedData(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ParameterBinding: name(1), data(2).

func marshalParameterBinding(m *ParameterBinding) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	if m.Data != nil {
		sub, err := marshalTypedData(m.Data)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 2, sub)
	}
	return b, nil
}

func parseParameterBinding(b []byte) (*ParameterBinding, error) {
	m := &ParameterBinding{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Name, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Data, err = parseTypedData(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Log: invocation_id(1), category(2), level(3), message(4), event_id(5),
// exception(6), properties(7).

func marshalLog(m *Log) []byte {
	var b []byte
	b = appendString(b, 1, m.InvocationID)
	b = appendString(b, 2, m.Category)
	b = appendEnum(b, 3, int32(m.Level))
	b = appendString(b, 4, m.Message)
	b = appendString(b, 5, m.EventID)
	if m.Exception != nil {
		b = appendMessage(b, 6, marshalException(m.Exception))
	}
	b = appendString(b, 7, m.Properties)
	return b
}

func parseLog(b []byte) (*Log, error) {
	m := &Log{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.InvocationID, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.Category, b, err = consumeString(b)
		case num == 3 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Level = Level(int32(v))
		case num == 4 && typ == protowire.BytesType:
			m.Message, b, err = consumeString(b)
		case num == 5 && typ == protowire.BytesType:
			m.EventID, b, err = consumeString(b)
		case num == 6 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Exception, err = parseException(raw)
			}
		case num == 7 && typ == protowire.BytesType:
			m.Properties, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TypedData: string(1), json(2), bytes(3), stream(4), http(5), int(6 zigzag),
// double(7). A set variant is always emitted, zero value included.

func marshalTypedData(d *TypedData) ([]byte, error) {
	var b []byte
	switch v := d.Value.(type) {
	case nil:
		return nil, nil
	case TypedString:
		b = appendOneofString(b, 1, string(v))
	case TypedJSON:
		b = appendOneofString(b, 2, string(v))
	case TypedBytes:
		b = appendOneofBytes(b, 3, v)
	case TypedStream:
		b = appendOneofBytes(b, 4, v)
	case *HTTP:
		sub, err := marshalHTTP(v)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 5, sub)
	case TypedInt:
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
	case TypedDouble:
		b = protowire.AppendTag(b, 7, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(float64(v)))
	default:
		return nil, fmt.Errorf("unknown typed data variant %T", v)
	}
	return b, nil
}

func parseTypedData(b []byte) (*TypedData, error) {
	d := &TypedData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var v string
			v, b, err = consumeString(b)
			d.Value = TypedString(v)
		case num == 2 && typ == protowire.BytesType:
			var v string
			v, b, err = consumeString(b)
			d.Value = TypedJSON(v)
		case num == 3 && typ == protowire.BytesType:
			var v []byte
			v, b, err = consumeBytes(b)
			d.Value = TypedBytes(v)
		case num == 4 && typ == protowire.BytesType:
			var v []byte
			v, b, err = consumeBytes(b)
			d.Value = TypedStream(v)
		case num == 5 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var h *HTTP
				if h, err = parseHTTP(raw); err == nil {
					d.Value = h
				}
			}
		case num == 6 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			d.Value = TypedInt(protowire.DecodeZigZag(v))
		case num == 7 && typ == protowire.Fixed64Type:
			var v uint64
			v, b, err = consumeFixed64(b)
			d.Value = TypedDouble(math.Float64frombits(v))
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// HTTP: method(1), url(2), headers(3), body(4), params(10), status_code(12),
// query(15), enable_content_negotiation(16), raw_body(17), identities(18),
// cookies(19).

func marshalHTTP(m *HTTP) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Method)
	b = appendString(b, 2, m.URL)
	b = appendStringMap(b, 3, m.Headers)
	if m.Body != nil {
		sub, err := marshalTypedData(m.Body)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 4, sub)
	}
	b = appendStringMap(b, 10, m.Params)
	b = appendString(b, 12, m.StatusCode)
	b = appendStringMap(b, 15, m.Query)
	b = appendBool(b, 16, m.EnableContentNegotiation)
	if m.RawBody != nil {
		sub, err := marshalTypedData(m.RawBody)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 17, sub)
	}
	for _, id := range m.Identities {
		b = appendMessage(b, 18, marshalClaimsIdentity(id))
	}
	for _, c := range m.Cookies {
		sub, err := marshalHTTPCookie(c)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 19, sub)
	}
	return b, nil
}

func parseHTTP(b []byte) (*HTTP, error) {
	m := &HTTP{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Method, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.URL, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.Headers == nil {
						m.Headers = map[string]string{}
					}
					m.Headers[k] = v
				}
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Body, err = parseTypedData(raw)
			}
		case num == 10 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.Params == nil {
						m.Params = map[string]string{}
					}
					m.Params[k] = v
				}
			}
		case num == 12 && typ == protowire.BytesType:
			m.StatusCode, b, err = consumeString(b)
		case num == 15 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var k, v string
				if k, v, err = parseStringMapEntry(raw); err == nil {
					if m.Query == nil {
						m.Query = map[string]string{}
					}
					m.Query[k] = v
				}
			}
		case num == 16 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.EnableContentNegotiation = v != 0
		case num == 17 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.RawBody, err = parseTypedData(raw)
			}
		case num == 18 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var id *ClaimsIdentity
				if id, err = parseClaimsIdentity(raw); err == nil {
					m.Identities = append(m.Identities, id)
				}
			}
		case num == 19 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var c *HTTPCookie
				if c, err = parseHTTPCookie(raw); err == nil {
					m.Cookies = append(m.Cookies, c)
				}
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ClaimsIdentity: authentication_type(1), name_claim_type(2),
// role_claim_type(3), claims(4).

func marshalClaimsIdentity(m *ClaimsIdentity) []byte {
	var b []byte
	if m.AuthenticationType != nil {
		b = appendMessage(b, 1, marshalNullableString(m.AuthenticationType))
	}
	if m.NameClaimType != nil {
		b = appendMessage(b, 2, marshalNullableString(m.NameClaimType))
	}
	if m.RoleClaimType != nil {
		b = appendMessage(b, 3, marshalNullableString(m.RoleClaimType))
	}
	for _, c := range m.Claims {
		b = appendMessage(b, 4, marshalClaim(c))
	}
	return b
}

func parseClaimsIdentity(b []byte) (*ClaimsIdentity, error) {
	m := &ClaimsIdentity{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.AuthenticationType, err = parseNullableString(raw)
			}
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.NameClaimType, err = parseNullableString(raw)
			}
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.RoleClaimType, err = parseNullableString(raw)
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				var c *Claim
				if c, err = parseClaim(raw); err == nil {
					m.Claims = append(m.Claims, c)
				}
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Claim: value(1), type(2).

func marshalClaim(m *Claim) []byte {
	var b []byte
	b = appendString(b, 1, m.Value)
	b = appendString(b, 2, m.Type)
	return b
}

func parseClaim(b []byte) (*Claim, error) {
	m := &Claim{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Value, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.Type, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// HTTPCookie: name(1), value(2), domain(3), path(4), expires(5), secure(6),
// http_only(7), same_site(8), max_age(9).

func marshalHTTPCookie(m *HTTPCookie) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Value)
	if m.Domain != nil {
		b = appendMessage(b, 3, marshalNullableString(m.Domain))
	}
	if m.Path != nil {
		b = appendMessage(b, 4, marshalNullableString(m.Path))
	}
	if m.Expires != nil {
		sub, err := marshalNullableTimestamp(m.Expires)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 5, sub)
	}
	if m.Secure != nil {
		b = appendMessage(b, 6, marshalNullableBool(m.Secure))
	}
	if m.HTTPOnly != nil {
		b = appendMessage(b, 7, marshalNullableBool(m.HTTPOnly))
	}
	b = appendEnum(b, 8, int32(m.SameSite))
	if m.MaxAge != nil {
		b = appendMessage(b, 9, marshalNullableDouble(m.MaxAge))
	}
	return b, nil
}

func parseHTTPCookie(b []byte) (*HTTPCookie, error) {
	m := &HTTPCookie{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Name, b, err = consumeString(b)
		case num == 2 && typ == protowire.BytesType:
			m.Value, b, err = consumeString(b)
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Domain, err = parseNullableString(raw)
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Path, err = parseNullableString(raw)
			}
		case num == 5 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Expires, err = parseNullableTimestamp(raw)
			}
		case num == 6 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Secure, err = parseNullableBool(raw)
			}
		case num == 7 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.HTTPOnly, err = parseNullableBool(raw)
			}
		case num == 8 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.SameSite = SameSite(int32(v))
		case num == 9 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.MaxAge, err = parseNullableDouble(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Nullable wrappers carry their value in oneof field 1. Presence of the
// wrapper message distinguishes "set" from "absent", and a present wrapper
// always emits the inner field, zero value included, matching oneof
// semantics.

func marshalNullableString(m *NullableString) []byte {
	var b []byte
	b = appendOneofString(b, 1, m.Value)
	return b
}

func parseNullableString(b []byte) (*NullableString, error) {
	m := &NullableString{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Value, b, err = consumeString(b)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func marshalNullableBool(m *NullableBool) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	if m.Value {
		b = protowire.AppendVarint(b, 1)
	} else {
		b = protowire.AppendVarint(b, 0)
	}
	return b
}

func parseNullableBool(b []byte) (*NullableBool, error) {
	m := &NullableBool{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			m.Value = v != 0
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func marshalNullableDouble(m *NullableDouble) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Value))
	return b
}

func parseNullableDouble(b []byte) (*NullableDouble, error) {
	m := &NullableDouble{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.Fixed64Type:
			var v uint64
			v, b, err = consumeFixed64(b)
			m.Value = math.Float64frombits(v)
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func marshalNullableTimestamp(m *NullableTimestamp) ([]byte, error) {
	var b []byte
	if m.Value != nil {
		var err error
		b, err = appendProto(b, 1, m.Value)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func parseNullableTimestamp(b []byte) (*NullableTimestamp, error) {
	m := &NullableTimestamp{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			var raw []byte
			raw, b, err = consumeRawBytes(b)
			if err == nil {
				m.Value, err = parseTimestamp(raw)
			}
		default:
			b, err = skipField(num, typ, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
