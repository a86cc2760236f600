package supertest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// Response is a fully buffered HTTP response. It is not modified after NewResponse
// returns; accessors hand out copies of anything mutable.
type Response struct {
	statusCode int
	header     http.Header
	raw        []byte
	body       any
}

// NewResponse captures a status code, header and raw body. When the Content-Type
// mentions json the body is decoded once here, and a body that does not parse is
// reported as a *DecodeError. Otherwise the body is kept as text. An empty body
// decodes to nil.
func NewResponse(statusCode int, header http.Header, raw []byte) (*Response, error) {
	h := make(http.Header, len(header))
	for key, values := range header {
		for _, v := range values {
			h.Add(key, v)
		}
	}

	body, err := decodeBody(h.Get("Content-Type"), raw)
	if err != nil {
		return nil, err
	}

	return &Response{
		statusCode: statusCode,
		header:     h,
		raw:        bytes.Clone(raw),
		body:       body,
	}, nil
}

func decodeBody(contentType string, raw []byte) (any, error) {
	if !isStructured(contentType) {
		return string(raw), nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return v, nil
}

// StatusCode returns the response status, e.g. 200.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Header looks a header up case-insensitively. Multiple values are joined with ", ".
// The second result is false when the header is absent, which is distinct from
// a header that is present with an empty value.
func (r *Response) Header(name string) (string, bool) {
	values := r.header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

// Values returns every value of the named header.
func (r *Response) Values(name string) []string {
	return append([]string(nil), r.header.Values(name)...)
}

// Headers returns a copy of all response headers.
func (r *Response) Headers() http.Header {
	return r.header.Clone()
}

// Body returns a copy of the decoded body: map[string]any, []any, float64, string,
// bool or nil for JSON responses, the raw text otherwise.
func (r *Response) Body() any {
	return clonePlain(r.body)
}

// clonePlain deep-copies the containers a decoded JSON value is made of.
func clonePlain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = clonePlain(e)
		}
		return m
	case []any:
		a := make([]any, len(x))
		for i, e := range x {
			a[i] = clonePlain(e)
		}
		return a
	default:
		return v
	}
}

// Text returns the body exactly as received.
func (r *Response) Text() string {
	return string(r.raw)
}

// Raw returns a copy of the received body bytes.
func (r *Response) Raw() []byte {
	return bytes.Clone(r.raw)
}
