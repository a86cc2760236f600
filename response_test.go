package supertest

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse_DecodesJSONBody(t *testing.T) {
	// Given
	header := http.Header{"Content-Type": {"application/json; charset=utf-8"}}

	// When
	resp, err := NewResponse(200, header, []byte(`{"x":1,"tags":["a"]}`))

	// Then
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1.0, "tags": []any{"a"}}, resp.Body())
	assert.Equal(t, `{"x":1,"tags":["a"]}`, resp.Text())
}

func TestNewResponse_StructuredMatchIsCaseInsensitive(t *testing.T) {
	resp, err := NewResponse(200, http.Header{"Content-Type": {"Application/Problem+JSON"}}, []byte(`[1]`))

	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, resp.Body())
}

func TestNewResponse_KeepsTextBody(t *testing.T) {
	resp, err := NewResponse(200, http.Header{"Content-Type": {"text/plain"}}, []byte(`{"x":1}`))

	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, resp.Body())
}

func TestNewResponse_NoContentType(t *testing.T) {
	resp, err := NewResponse(204, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "", resp.Body())
	assert.Equal(t, 204, resp.StatusCode())
}

func TestNewResponse_EmptyJSONBodyIsNil(t *testing.T) {
	resp, err := NewResponse(200, http.Header{"Content-Type": {"application/json"}}, []byte("  "))

	require.NoError(t, err)
	assert.Nil(t, resp.Body())
}

func TestNewResponse_InvalidJSONReturnsParserMessage(t *testing.T) {
	// When
	resp, err := NewResponse(200, http.Header{"Content-Type": {"application/json"}}, []byte("invalid"))

	// Then
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Equal(t, "invalid character 'i' looking for beginning of value", err.Error())

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestResponse_HeaderLookup(t *testing.T) {
	// Given: a non-canonical key, as a hand-built header might have
	resp, err := NewResponse(200, http.Header{
		"accept":     {"application/json"},
		"Set-Cookie": {"a=1", "b=2"},
		"X-Empty":    {""},
	}, nil)
	require.NoError(t, err)

	// Then
	v, ok := resp.Header("Accept")
	assert.True(t, ok)
	assert.Equal(t, "application/json", v)

	v, ok = resp.Header("set-cookie")
	assert.True(t, ok)
	assert.Equal(t, "a=1, b=2", v)
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Values("SET-COOKIE"))

	v, ok = resp.Header("x-empty")
	assert.True(t, ok, "an empty header is still present")
	assert.Equal(t, "", v)

	_, ok = resp.Header("X-Missing")
	assert.False(t, ok)
}

func TestNewResponse_IsIdempotent(t *testing.T) {
	header := http.Header{"Content-Type": {"application/json"}, "X-Id": {"7"}}
	raw := []byte(`{"user":{"id":7}}`)

	first, err := NewResponse(201, header, raw)
	require.NoError(t, err)
	second, err := NewResponse(201, header, raw)
	require.NoError(t, err)

	assert.Equal(t, first.StatusCode(), second.StatusCode())
	assert.Equal(t, first.Headers(), second.Headers())
	assert.Equal(t, first.Body(), second.Body())
}

func TestResponse_IsNotAffectedByCallerMutation(t *testing.T) {
	// Given
	header := http.Header{"X-Id": {"1"}}
	raw := []byte("abc")
	resp, err := NewResponse(200, header, raw)
	require.NoError(t, err)

	// When
	header.Set("X-Id", "2")
	raw[0] = 'z'
	resp.Headers().Set("X-Id", "3")
	resp.Raw()[1] = 'z'

	// Then
	v, _ := resp.Header("X-Id")
	assert.Equal(t, "1", v)
	assert.Equal(t, "abc", resp.Text())
}

func TestResponse_BodyIsNotAffectedByCallerMutation(t *testing.T) {
	// Given
	header := http.Header{"Content-Type": {"application/json"}}
	resp, err := NewResponse(200, header, []byte(`{"x":1,"tags":["a"],"user":{"id":7}}`))
	require.NoError(t, err)

	// When
	body := resp.Body().(map[string]any)
	body["x"] = 2.0
	body["tags"].([]any)[0] = "b"
	body["user"].(map[string]any)["id"] = 8.0

	// Then
	assert.NoError(t, resp.Assert(map[string]any{"x": 1, "tags": []any{"a"}, "user": map[string]any{"id": 7}}))
	assert.NoError(t, resp.Check(JSONPath("$.user.id", 7)))
}
