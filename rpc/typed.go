package rpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// TypedData wraps a payload whose shape is only known at runtime: trigger
// data, binding inputs and outputs, and function return values all travel as
// TypedData. A nil Value means the host (or worker) sent no data at all,
// which is distinct from any zero value.
type TypedData struct {
	Value TypedValue
}

// TypedValue is one variant of a [TypedData] payload. The set of
// implementations is closed: [TypedString], [TypedJSON], [TypedBytes],
// [TypedStream], [TypedInt], [TypedDouble], and [*HTTP].
type TypedValue interface {
	isTypedValue()
}

// TypedString is UTF-8 text.
type TypedString string

func (TypedString) isTypedValue() {}

// TypedJSON is a JSON document carried as raw text.
type TypedJSON string

func (TypedJSON) isTypedValue() {}

// TypedBytes is an opaque byte payload.
type TypedBytes []byte

func (TypedBytes) isTypedValue() {}

// TypedStream is a byte payload the host designates as streamed content. The
// bytes arrive in one frame either way; the distinction is declarative.
type TypedStream []byte

func (TypedStream) isTypedValue() {}

// TypedInt is a signed integer, zigzag-encoded on the wire.
type TypedInt int64

func (TypedInt) isTypedValue() {}

// TypedDouble is a 64-bit float.
type TypedDouble float64

func (TypedDouble) isTypedValue() {}

// HTTP is the structured representation of an HTTP request or response
// travelling through a binding. On requests the host fills method, URL,
// headers, params, and query; on responses the worker fills status code,
// headers, body, and cookies. Body holds the negotiated payload; RawBody
// preserves the unmodified one when content negotiation is on.
type HTTP struct {
	Method                   string
	URL                      string
	Headers                  map[string]string
	Body                     *TypedData
	Params                   map[string]string
	StatusCode               string
	Query                    map[string]string
	EnableContentNegotiation bool
	RawBody                  *TypedData
	Identities               []*ClaimsIdentity
	Cookies                  []*HTTPCookie
}

func (*HTTP) isTypedValue() {}

// ClaimsIdentity is the authenticated identity attached to an HTTP request.
type ClaimsIdentity struct {
	AuthenticationType *NullableString
	NameClaimType      *NullableString
	RoleClaimType      *NullableString
	Claims             []*Claim
}

// Claim is a single name/value claim of a [ClaimsIdentity].
type Claim struct {
	Value string
	Type  string
}

// HTTPCookie is a cookie set on an HTTP response. Only Name and Value are
// meaningful on requests.
type HTTPCookie struct {
	Name     string
	Value    string
	Domain   *NullableString
	Path     *NullableString
	Expires  *NullableTimestamp
	Secure   *NullableBool
	HTTPOnly *NullableBool
	SameSite SameSite
	MaxAge   *NullableDouble
}

// The Nullable wrappers distinguish "absent" from a zero value on fields
// where the schema needs real optionality. A nil pointer means the field was
// absent on the wire; a non-nil pointer carries the value, zero included.

// NullableString is an optional string field.
type NullableString struct {
	Value string
}

// NullableDouble is an optional float64 field.
type NullableDouble struct {
	Value float64
}

// NullableBool is an optional bool field.
type NullableBool struct {
	Value bool
}

// NullableTimestamp is an optional timestamp field.
type NullableTimestamp struct {
	Value *timestamppb.Timestamp
}
