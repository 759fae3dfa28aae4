package bindings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azfunc/worker-go/rpc"
)

func TestToThenFromIsIdentity(t *testing.T) {
	cases := []struct {
		name     string
		declared rpc.DataType
		value    Value
	}{
		{name: "StringAsString", declared: rpc.DataTypeString, value: String("abc")},
		{name: "BytesAsBinary", declared: rpc.DataTypeBinary, value: Bytes{0x01, 0x02}},
		{name: "StreamAsStream", declared: rpc.DataTypeStream, value: Stream{0x03}},
		{name: "StringAsUndefined", declared: rpc.DataTypeUndefined, value: String("abc")},
		{name: "JSONAsUndefined", declared: rpc.DataTypeUndefined, value: JSON(`{"a":1}`)},
		{name: "BytesAsUndefined", declared: rpc.DataTypeUndefined, value: Bytes{0xff}},
		{name: "StreamAsUndefined", declared: rpc.DataTypeUndefined, value: Stream{0x00}},
		{name: "IntAsUndefined", declared: rpc.DataTypeUndefined, value: Int(-42)},
		{name: "DoubleAsUndefined", declared: rpc.DataTypeUndefined, value: Double(3.25)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := ToTypedData(tc.declared, tc.value)
			require.NoError(t, err)
			back, err := FromTypedData(tc.declared, data)
			require.NoError(t, err)
			require.Equal(t, tc.value, back)
		})
	}
}

func TestFromTypedData(t *testing.T) {
	// Declared String accepts both text variants and yields the text.
	v, err := FromTypedData(rpc.DataTypeString, &rpc.TypedData{Value: rpc.TypedString("abc")})
	require.NoError(t, err)
	require.Equal(t, String("abc"), v)

	v, err = FromTypedData(rpc.DataTypeString, &rpc.TypedData{Value: rpc.TypedJSON(`{"a":1}`)})
	require.NoError(t, err)
	require.Equal(t, String(`{"a":1}`), v)

	// Absent data is a nil value, not an error.
	v, err = FromTypedData(rpc.DataTypeString, nil)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = FromTypedData(rpc.DataTypeBinary, &rpc.TypedData{})
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestFromTypedDataMismatch(t *testing.T) {
	cases := []struct {
		name     string
		declared rpc.DataType
		wire     rpc.TypedValue
	}{
		{name: "BinaryGetsInt", declared: rpc.DataTypeBinary, wire: rpc.TypedInt(1)},
		{name: "BinaryGetsStream", declared: rpc.DataTypeBinary, wire: rpc.TypedStream{0x01}},
		{name: "StringGetsBytes", declared: rpc.DataTypeString, wire: rpc.TypedBytes{0x01}},
		{name: "StreamGetsBytes", declared: rpc.DataTypeStream, wire: rpc.TypedBytes{0x01}},
		{name: "StringGetsHTTP", declared: rpc.DataTypeString, wire: &rpc.HTTP{Method: "GET"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromTypedData(tc.declared, &rpc.TypedData{Value: tc.wire})
			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			require.Equal(t, tc.declared, convErr.DataType)
		})
	}
}

func TestToTypedData(t *testing.T) {
	// Declared String accepts JSON and produces the string variant.
	data, err := ToTypedData(rpc.DataTypeString, JSON(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, rpc.TypedString(`{"a":1}`), data.Value)

	// Under Undefined the JSON kind is preserved.
	data, err = ToTypedData(rpc.DataTypeUndefined, JSON(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, rpc.TypedJSON(`{"a":1}`), data.Value)

	// Nil value encodes as data with no variant.
	data, err = ToTypedData(rpc.DataTypeString, nil)
	require.NoError(t, err)
	require.Nil(t, data.Value)
}

func TestToTypedDataMismatch(t *testing.T) {
	cases := []struct {
		name     string
		declared rpc.DataType
		value    Value
	}{
		{name: "StringGetsBytes", declared: rpc.DataTypeString, value: Bytes{0x01}},
		{name: "BinaryGetsString", declared: rpc.DataTypeBinary, value: String("abc")},
		{name: "StreamGetsDouble", declared: rpc.DataTypeStream, value: Double(1)},
		{name: "BinaryGetsHTTP", declared: rpc.DataTypeBinary, value: &HTTP{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ToTypedData(tc.declared, tc.value)
			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			require.Equal(t, tc.declared, convErr.DataType)
			require.Contains(t, convErr.Error(), "cannot convert")
		})
	}
}

func TestJSONDecode(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, JSON(`{"name":"w"}`).Decode(&out))
	require.Equal(t, "w", out.Name)
	require.Error(t, JSON(`{`).Decode(&out))
}

func TestValidateBinding(t *testing.T) {
	require.NoError(t, ValidateBinding(&rpc.BindingInfo{Type: "httpTrigger", Direction: rpc.DirectionIn, DataType: rpc.DataTypeString}))
	require.NoError(t, ValidateBinding(&rpc.BindingInfo{Type: "queue", Direction: rpc.DirectionOut}))

	require.Error(t, ValidateBinding(nil))
	require.ErrorContains(t, ValidateBinding(&rpc.BindingInfo{Direction: rpc.Direction(9)}), "direction")
	require.ErrorContains(t, ValidateBinding(&rpc.BindingInfo{DataType: rpc.DataType(9)}), "data type")
}
