package bindings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azfunc/worker-go/rpc"
)

func ptr[T any](v T) *T { return &v }

func TestHTTPRoundTrip(t *testing.T) {
	expires := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	h := &HTTP{
		Method:     "POST",
		URL:        "https://example.com/api/items?page=2",
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       JSON(`{"id":7}`),
		Params:     map[string]string{"id": "7"},
		StatusCode: "201",
		Query:      map[string]string{"page": "2"},
		RawBody:    Bytes(`{"id":7}`),
		Identities: []ClaimsIdentity{{
			AuthenticationType: ptr("aad"),
			NameClaimType:      ptr(""),
			Claims:             []Claim{{Type: "role", Value: "admin"}},
		}},
		Cookies: []Cookie{{
			Name:     "session",
			Value:    "abc",
			Domain:   ptr("example.com"),
			Path:     ptr("/"),
			Expires:  ptr(expires),
			Secure:   ptr(true),
			HTTPOnly: ptr(false),
			SameSite: rpc.SameSiteLax,
			MaxAge:   ptr(3600.0),
		}},
		EnableContentNegotiation: true,
	}

	data, err := ToTypedData(rpc.DataTypeUndefined, h)
	require.NoError(t, err)
	back, err := FromTypedData(rpc.DataTypeUndefined, data)
	require.NoError(t, err)
	require.Equal(t, h, back)
}

func TestHTTPNullableAbsence(t *testing.T) {
	// Absent optionals must survive the round trip as nil, not become zero
	// values.
	h := &HTTP{
		Method:  "GET",
		Cookies: []Cookie{{Name: "bare", Value: "v"}},
		Identities: []ClaimsIdentity{{
			Claims: []Claim{{Type: "sub", Value: "u1"}},
		}},
	}
	data, err := ToTypedData(rpc.DataTypeUndefined, h)
	require.NoError(t, err)
	back, err := FromTypedData(rpc.DataTypeUndefined, data)
	require.NoError(t, err)

	got := back.(*HTTP)
	require.Nil(t, got.Cookies[0].Domain)
	require.Nil(t, got.Cookies[0].Expires)
	require.Nil(t, got.Cookies[0].Secure)
	require.Nil(t, got.Identities[0].AuthenticationType)
}

func TestHTTPEmptyVersusAbsent(t *testing.T) {
	set := &HTTP{Cookies: []Cookie{{Name: "c", Domain: ptr("")}}}
	unset := &HTTP{Cookies: []Cookie{{Name: "c"}}}

	dataSet, err := ToTypedData(rpc.DataTypeUndefined, set)
	require.NoError(t, err)
	dataUnset, err := ToTypedData(rpc.DataTypeUndefined, unset)
	require.NoError(t, err)

	backSet, err := FromTypedData(rpc.DataTypeUndefined, dataSet)
	require.NoError(t, err)
	backUnset, err := FromTypedData(rpc.DataTypeUndefined, dataUnset)
	require.NoError(t, err)

	require.NotNil(t, backSet.(*HTTP).Cookies[0].Domain)
	require.Equal(t, "", *backSet.(*HTTP).Cookies[0].Domain)
	require.Nil(t, backUnset.(*HTTP).Cookies[0].Domain)
}

func TestHTTPNestedBodyKinds(t *testing.T) {
	for _, body := range []Value{String("plain"), JSON(`[1,2]`), Bytes{0xde, 0xad}, Stream{0x01}} {
		h := &HTTP{Method: "POST", Body: body}
		data, err := ToTypedData(rpc.DataTypeUndefined, h)
		require.NoError(t, err)
		back, err := FromTypedData(rpc.DataTypeUndefined, data)
		require.NoError(t, err)
		require.Equal(t, body, back.(*HTTP).Body)
	}
}
