package supertest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Request accumulates a method, path and headers until Send. The setters return the
// request for chaining; the first usage error they hit is kept, reported by Err and
// returned by Send. A Request can be sent once.
type Request struct {
	client *Client
	method string
	path   string
	header http.Header
	err    error
	sent   bool
}

func newRequest(c *Client, method, path string) *Request {
	return &Request{
		client: c,
		method: method,
		path:   path,
		header: make(http.Header),
	}
}

// headerArg is what Set accepts: one name/value pair or a whole mapping.
type headerArg interface {
	apply(h http.Header)
}

type headerPair struct {
	key   string
	value string
}

type headerMapping struct {
	header http.Header
}

func (p headerPair) apply(h http.Header) {
	h.Set(p.key, p.value)
}

func (m headerMapping) apply(h http.Header) {
	for key, values := range m.header {
		h.Del(key)
		for _, v := range values {
			h.Add(key, v)
		}
	}
}

func parseHeaderArgs(args []any) (headerArg, error) {
	switch len(args) {
	case 2:
		key, ok := args[0].(string)
		if !ok {
			return nil, usageErrorf("Set header name must be a string, got %T", args[0])
		}
		return headerPair{key: key, value: fmt.Sprint(args[1])}, nil
	case 1:
		switch m := args[0].(type) {
		case http.Header:
			return headerMapping{header: m}, nil
		case map[string]string:
			h := make(http.Header, len(m))
			for k, v := range m {
				h.Set(k, v)
			}
			return headerMapping{header: h}, nil
		case map[string]any:
			h := make(http.Header, len(m))
			for k, v := range m {
				h.Set(k, fmt.Sprint(v))
			}
			return headerMapping{header: h}, nil
		default:
			return nil, usageErrorf("Set with one argument needs a header mapping, got %T", args[0])
		}
	default:
		return nil, usageErrorf("Set accepts one or two arguments, got %d", len(args))
	}
}

// Set merges headers into the request: Set(name, value) or Set(mapping), where mapping
// is an http.Header, map[string]string or map[string]any. Names are case-insensitive
// and the last write wins.
func (r *Request) Set(args ...any) *Request {
	arg, err := parseHeaderArgs(args)
	if err != nil {
		r.setError(err)
		return r
	}
	arg.apply(r.header)
	return r
}

// Type sets Content-Type from a media alias such as "json" or a full media type.
func (r *Request) Type(alias string) *Request {
	return r.setMediaHeader("Content-Type", alias)
}

// Accept sets Accept from a media alias such as "json" or a full media type.
func (r *Request) Accept(alias string) *Request {
	return r.setMediaHeader("Accept", alias)
}

func (r *Request) setMediaHeader(key, alias string) *Request {
	ct, err := contentType(alias)
	if err != nil {
		r.setError(err)
		return r
	}
	r.header.Set(key, ct)
	return r
}

// Err returns the first usage error recorded while building the request.
func (r *Request) Err() error {
	return r.err
}

// setError records the first error; later ones are dropped.
func (r *Request) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Send dispatches the request and returns the captured response.
//
// body may be nil, a string or []byte sent as is, an io.Reader streamed as the request
// body, or any other value, which is encoded as JSON with a JSON Content-Type unless one
// was set. The Cookie header is replaced by the cookies the client holds for the path.
// The application is started before dispatch and closed before Send returns, on every
// path. Set-Cookie values of the response are stored before the body is decoded.
func (r *Request) Send(ctx context.Context, body any) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.sent {
		return nil, usageErrorf("%s %s was already sent", r.method, r.path)
	}
	r.sent = true

	payload, err := r.preparePayload(body)
	if err != nil {
		return nil, err
	}

	if cookie := r.client.cookies.CookieHeaderFor(LoopbackHost, r.path); cookie != "" {
		r.header.Set("Cookie", cookie)
	} else {
		r.header.Del("Cookie")
	}

	logger := r.client.logger.With("send_id", uuid.NewString(), "method", r.method, "path", r.path)
	return withServer(ctx, r.client.app, logger, func(addr net.Addr) (*Response, error) {
		return r.dispatch(ctx, addr, payload, logger)
	})
}

func (r *Request) preparePayload(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, usageErrorf("cannot encode %T body as JSON: %v", body, err)
	}
	if r.header.Get("Content-Type") == "" {
		ct, _ := contentType("json")
		r.header.Set("Content-Type", ct)
	}
	return bytes.NewReader(data), nil
}

func (r *Request) dispatch(ctx context.Context, addr net.Addr, payload io.Reader,
	logger *slog.Logger) (*Response, error) {
	path := r.path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, "http://"+addr.String()+path, payload)
	if err != nil {
		return nil, usageErrorf("failed to create http request: %v", err)
	}

	for key, values := range r.client.DefaultHeaders {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	// Cookie only ever comes from the store, set on r.header by Send.
	httpReq.Header.Del("Cookie")
	for key, values := range r.header {
		httpReq.Header.Del(key)
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}

	logger.Debug("dispatch: sending request", "url", httpReq.URL.String())
	httpResp, err := r.client.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrDispatch, err)
	}

	if err := r.client.cookies.Absorb(httpResp.Header.Values("Set-Cookie"), LoopbackHost, r.path); err != nil {
		logger.Debug("dispatch: skipped malformed cookies", "error", err)
	}

	logger.Debug("dispatch: response received", "status", httpResp.StatusCode, "size", len(raw))
	return NewResponse(httpResp.StatusCode, httpResp.Header, raw)
}
