package bindings

import (
	"fmt"

	"github.com/azfunc/worker-go/rpc"
)

// ConversionError reports a payload that cannot satisfy a binding's declared
// data type. It is scoped to a single parameter of a single invocation;
// callers fail that invocation and carry on.
type ConversionError struct {
	// DataType the binding declared at load time.
	DataType rpc.DataType
	// Variant describes the payload that actually arrived.
	Variant string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s payload for binding declared %s", e.Variant, e.DataType)
}

// FromTypedData converts a wire payload into the native value matching the
// binding's declared data type.
//
//   - [rpc.DataTypeString] accepts the string and json variants and yields
//     the text.
//   - [rpc.DataTypeBinary] accepts the bytes variant.
//   - [rpc.DataTypeStream] accepts the stream variant.
//   - [rpc.DataTypeUndefined] accepts any variant and yields the matching
//     native kind.
//
// Data with no variant set (or nil data) yields a nil Value and no error.
// Every other pairing returns a [*ConversionError].
func FromTypedData(declared rpc.DataType, data *rpc.TypedData) (Value, error) {
	if data == nil || data.Value == nil {
		return nil, nil
	}
	switch declared {
	case rpc.DataTypeString:
		switch v := data.Value.(type) {
		case rpc.TypedString:
			return String(v), nil
		case rpc.TypedJSON:
			return String(v), nil
		}
	case rpc.DataTypeBinary:
		if v, ok := data.Value.(rpc.TypedBytes); ok {
			return Bytes(v), nil
		}
	case rpc.DataTypeStream:
		if v, ok := data.Value.(rpc.TypedStream); ok {
			return Stream(v), nil
		}
	case rpc.DataTypeUndefined:
		switch v := data.Value.(type) {
		case rpc.TypedString:
			return String(v), nil
		case rpc.TypedJSON:
			return JSON(v), nil
		case rpc.TypedBytes:
			return Bytes(v), nil
		case rpc.TypedStream:
			return Stream(v), nil
		case rpc.TypedInt:
			return Int(v), nil
		case rpc.TypedDouble:
			return Double(v), nil
		case *rpc.HTTP:
			return httpFromWire(v)
		}
	}
	return nil, &ConversionError{DataType: declared, Variant: wireVariant(data.Value)}
}

// ToTypedData converts a native value into the wire payload matching the
// binding's declared data type.
//
//   - [rpc.DataTypeString] accepts [String] and [JSON] and produces the
//     string variant.
//   - [rpc.DataTypeBinary] accepts [Bytes] and produces the bytes variant.
//   - [rpc.DataTypeStream] accepts [Stream] and produces the stream variant.
//   - [rpc.DataTypeUndefined] accepts any value and produces the matching
//     wire variant.
//
// A nil Value produces data with no variant set. Every other pairing returns
// a [*ConversionError].
func ToTypedData(declared rpc.DataType, value Value) (*rpc.TypedData, error) {
	if value == nil {
		return &rpc.TypedData{}, nil
	}
	switch declared {
	case rpc.DataTypeString:
		switch v := value.(type) {
		case String:
			return &rpc.TypedData{Value: rpc.TypedString(v)}, nil
		case JSON:
			return &rpc.TypedData{Value: rpc.TypedString(v)}, nil
		}
	case rpc.DataTypeBinary:
		if v, ok := value.(Bytes); ok {
			return &rpc.TypedData{Value: rpc.TypedBytes(v)}, nil
		}
	case rpc.DataTypeStream:
		if v, ok := value.(Stream); ok {
			return &rpc.TypedData{Value: rpc.TypedStream(v)}, nil
		}
	case rpc.DataTypeUndefined:
		switch v := value.(type) {
		case String:
			return &rpc.TypedData{Value: rpc.TypedString(v)}, nil
		case JSON:
			return &rpc.TypedData{Value: rpc.TypedJSON(v)}, nil
		case Bytes:
			return &rpc.TypedData{Value: rpc.TypedBytes(v)}, nil
		case Stream:
			return &rpc.TypedData{Value: rpc.TypedStream(v)}, nil
		case Int:
			return &rpc.TypedData{Value: rpc.TypedInt(v)}, nil
		case Double:
			return &rpc.TypedData{Value: rpc.TypedDouble(v)}, nil
		case *HTTP:
			wire, err := httpToWire(v)
			if err != nil {
				return nil, err
			}
			return &rpc.TypedData{Value: wire}, nil
		}
	}
	return nil, &ConversionError{DataType: declared, Variant: nativeVariant(value)}
}

// ValidateBinding reports whether a binding declaration is one this converter
// can serve. The registry rejects function loads whose bindings fail this
// check so that invocations never meet an unconvertible declaration.
func ValidateBinding(info *rpc.BindingInfo) error {
	if info == nil {
		return fmt.Errorf("missing binding info")
	}
	switch info.Direction {
	case rpc.DirectionIn, rpc.DirectionOut, rpc.DirectionInOut:
	default:
		return fmt.Errorf("unsupported binding direction %s", info.Direction)
	}
	switch info.DataType {
	case rpc.DataTypeUndefined, rpc.DataTypeString, rpc.DataTypeBinary, rpc.DataTypeStream:
	default:
		return fmt.Errorf("unsupported binding data type %s", info.DataType)
	}
	return nil
}

func wireVariant(v rpc.TypedValue) string {
	switch v.(type) {
	case rpc.TypedString:
		return "string"
	case rpc.TypedJSON:
		return "json"
	case rpc.TypedBytes:
		return "bytes"
	case rpc.TypedStream:
		return "stream"
	case rpc.TypedInt:
		return "int"
	case rpc.TypedDouble:
		return "double"
	case *rpc.HTTP:
		return "http"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func nativeVariant(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case JSON:
		return "json"
	case Bytes:
		return "bytes"
	case Stream:
		return "stream"
	case Int:
		return "int"
	case Double:
		return "double"
	case *HTTP:
		return "http"
	default:
		return fmt.Sprintf("%T", v)
	}
}
