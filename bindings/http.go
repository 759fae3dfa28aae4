package bindings

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/azfunc/worker-go/rpc"
)

// HTTP is the native shape of an HTTP request or response moving through a
// binding. Requests arrive with Method, URL, Headers, Params, and Query
// populated by the host; responses leave with StatusCode, Headers, Body, and
// Cookies populated by the handler. Body and RawBody are themselves [Value]s
// so text, JSON, and binary payloads keep their kind.
type HTTP struct {
	Method                   string
	URL                      string
	Headers                  map[string]string
	Body                     Value
	Params                   map[string]string
	StatusCode               string
	Query                    map[string]string
	EnableContentNegotiation bool
	RawBody                  Value
	Identities               []ClaimsIdentity
	Cookies                  []Cookie
}

func (*HTTP) isValue() {}

// ClaimsIdentity is the authenticated identity attached to a request. Nil
// pointer fields were absent on the wire.
type ClaimsIdentity struct {
	AuthenticationType *string
	NameClaimType      *string
	RoleClaimType      *string
	Claims             []Claim
}

// Claim is a single name/value claim.
type Claim struct {
	Type  string
	Value string
}

// Cookie is a cookie set on a response. Nil pointer fields are omitted from
// the wire entirely, which the host distinguishes from zero values.
type Cookie struct {
	Name     string
	Value    string
	Domain   *string
	Path     *string
	Expires  *time.Time
	Secure   *bool
	HTTPOnly *bool
	SameSite rpc.SameSite
	MaxAge   *float64
}

func httpFromWire(w *rpc.HTTP) (*HTTP, error) {
	body, err := FromTypedData(rpc.DataTypeUndefined, w.Body)
	if err != nil {
		return nil, err
	}
	rawBody, err := FromTypedData(rpc.DataTypeUndefined, w.RawBody)
	if err != nil {
		return nil, err
	}
	h := &HTTP{
		Method:                   w.Method,
		URL:                      w.URL,
		Headers:                  w.Headers,
		Body:                     body,
		Params:                   w.Params,
		StatusCode:               w.StatusCode,
		Query:                    w.Query,
		EnableContentNegotiation: w.EnableContentNegotiation,
		RawBody:                  rawBody,
	}
	for _, id := range w.Identities {
		if id == nil {
			continue
		}
		h.Identities = append(h.Identities, ClaimsIdentity{
			AuthenticationType: nullableString(id.AuthenticationType),
			NameClaimType:      nullableString(id.NameClaimType),
			RoleClaimType:      nullableString(id.RoleClaimType),
			Claims:             claimsFromWire(id.Claims),
		})
	}
	for _, c := range w.Cookies {
		if c == nil {
			continue
		}
		h.Cookies = append(h.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   nullableString(c.Domain),
			Path:     nullableString(c.Path),
			Expires:  nullableTime(c.Expires),
			Secure:   nullableBool(c.Secure),
			HTTPOnly: nullableBool(c.HTTPOnly),
			SameSite: c.SameSite,
			MaxAge:   nullableDouble(c.MaxAge),
		})
	}
	return h, nil
}

func httpToWire(h *HTTP) (*rpc.HTTP, error) {
	w := &rpc.HTTP{
		Method:                   h.Method,
		URL:                      h.URL,
		Headers:                  h.Headers,
		Params:                   h.Params,
		StatusCode:               h.StatusCode,
		Query:                    h.Query,
		EnableContentNegotiation: h.EnableContentNegotiation,
	}
	if h.Body != nil {
		data, err := ToTypedData(rpc.DataTypeUndefined, h.Body)
		if err != nil {
			return nil, err
		}
		w.Body = data
	}
	if h.RawBody != nil {
		data, err := ToTypedData(rpc.DataTypeUndefined, h.RawBody)
		if err != nil {
			return nil, err
		}
		w.RawBody = data
	}
	for _, id := range h.Identities {
		w.Identities = append(w.Identities, &rpc.ClaimsIdentity{
			AuthenticationType: wireNullableString(id.AuthenticationType),
			NameClaimType:      wireNullableString(id.NameClaimType),
			RoleClaimType:      wireNullableString(id.RoleClaimType),
			Claims:             claimsToWire(id.Claims),
		})
	}
	for _, c := range h.Cookies {
		w.Cookies = append(w.Cookies, &rpc.HTTPCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   wireNullableString(c.Domain),
			Path:     wireNullableString(c.Path),
			Expires:  wireNullableTime(c.Expires),
			Secure:   wireNullableBool(c.Secure),
			HTTPOnly: wireNullableBool(c.HTTPOnly),
			SameSite: c.SameSite,
			MaxAge:   wireNullableDouble(c.MaxAge),
		})
	}
	return w, nil
}

func claimsFromWire(claims []*rpc.Claim) []Claim {
	var out []Claim
	for _, c := range claims {
		if c == nil {
			continue
		}
		out = append(out, Claim{Type: c.Type, Value: c.Value})
	}
	return out
}

func claimsToWire(claims []Claim) []*rpc.Claim {
	var out []*rpc.Claim
	for _, c := range claims {
		out = append(out, &rpc.Claim{Type: c.Type, Value: c.Value})
	}
	return out
}

func nullableString(w *rpc.NullableString) *string {
	if w == nil {
		return nil
	}
	v := w.Value
	return &v
}

func nullableBool(w *rpc.NullableBool) *bool {
	if w == nil {
		return nil
	}
	v := w.Value
	return &v
}

func nullableDouble(w *rpc.NullableDouble) *float64 {
	if w == nil {
		return nil
	}
	v := w.Value
	return &v
}

func nullableTime(w *rpc.NullableTimestamp) *time.Time {
	if w == nil || w.Value == nil {
		return nil
	}
	v := w.Value.AsTime()
	return &v
}

func wireNullableString(v *string) *rpc.NullableString {
	if v == nil {
		return nil
	}
	return &rpc.NullableString{Value: *v}
}

func wireNullableBool(v *bool) *rpc.NullableBool {
	if v == nil {
		return nil
	}
	return &rpc.NullableBool{Value: *v}
}

func wireNullableDouble(v *float64) *rpc.NullableDouble {
	if v == nil {
		return nil
	}
	return &rpc.NullableDouble{Value: *v}
}

func wireNullableTime(v *time.Time) *rpc.NullableTimestamp {
	if v == nil {
		return nil
	}
	return &rpc.NullableTimestamp{Value: timestamppb.New(*v)}
}
