// Package bindings converts invocation payloads between their wire form and
// the native values function handlers work with. Conversion is driven by the
// data type each binding declared at load time; a payload that cannot satisfy
// the declaration fails that one parameter, never the whole worker.
package bindings

import "encoding/json"

// Value is a native payload. The set of implementations is closed: [String],
// [JSON], [Bytes], [Stream], [Int], [Double], and [*HTTP]. A nil Value means
// the binding carried no data, which is distinct from any zero value.
type Value interface {
	isValue()
}

// String is UTF-8 text.
type String string

func (String) isValue() {}

// JSON is a JSON document carried as raw text. Use [JSON.Decode] to
// deserialize it into a Go value.
type JSON string

func (JSON) isValue() {}

// Decode deserializes the document into the value pointed to by v.
func (j JSON) Decode(v any) error {
	return json.Unmarshal([]byte(j), v)
}

// Bytes is an opaque byte payload.
type Bytes []byte

func (Bytes) isValue() {}

// Stream is a byte payload designated as streamed content.
type Stream []byte

func (Stream) isValue() {}

// Int is a signed integer payload.
type Int int64

func (Int) isValue() {}

// Double is a 64-bit float payload.
type Double float64

func (Double) isValue() {}
