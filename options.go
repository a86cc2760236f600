package supertest

import (
	"log/slog"
	"net/http"
)

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client) error

// WithHTTPClient allows providing a custom http.Client as the transport.
// Its Jar is not consulted for cookies; the client's CookieStore is.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			c.httpClient = newHTTPClient()
		} else {
			c.httpClient = hc
		}
		return nil
	}
}

// WithDefaultHeader adds a default header to be sent with every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) error {
		c.DefaultHeaders.Add(key, value)
		return nil
	}
}

// WithDefaultHeaders adds multiple default headers.
func WithDefaultHeaders(headers http.Header) ClientOption {
	return func(c *Client) error {
		for key, values := range headers {
			for _, value := range values {
				c.DefaultHeaders.Add(key, value)
			}
		}
		return nil
	}
}

// WithLogger sets the logger used for request lifecycle debug output.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return usageErrorf("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithCookieStore makes the client read and write cookies through store,
// which lets several clients share one session.
func WithCookieStore(store *CookieStore) ClientOption {
	return func(c *Client) error {
		if store == nil {
			return usageErrorf("nil cookie store")
		}
		c.cookies = store
		return nil
	}
}

// newHTTPClient returns the default transport: no keep-alives since every server
// lives for a single request, and redirects are returned rather than followed.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
