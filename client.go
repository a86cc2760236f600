package supertest

import (
	"log/slog"
	"net/http"
	"strings"
)

// Methods lists the verbs that have a named constructor on Client.
var Methods = []string{ //nolint:gochecknoglobals
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// Client issues requests against an application under test. Every Send starts the
// application on a fresh loopback port and stops it once the response is read.
// Cookies set by responses are kept in the client's CookieStore and sent with
// later requests, so a login followed by an authenticated call just works.
type Client struct {
	app            App
	httpClient     *http.Client
	DefaultHeaders http.Header
	cookies        *CookieStore
	logger         *slog.Logger
}

// NewClient creates a client bound to app.
func NewClient(app App, options ...ClientOption) (*Client, error) {
	if app == nil {
		return nil, usageErrorf("nil app")
	}
	c := &Client{
		app:            app,
		httpClient:     newHTTPClient(),
		DefaultHeaders: make(http.Header),
		cookies:        NewCookieStore(),
		logger:         slog.Default(),
	}

	for _, option := range options {
		err := option(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Cookies returns the store shared by every request this client sends.
func (c *Client) Cookies() *CookieStore {
	return c.cookies
}

// Request starts building a request with any method. The method is upper-cased.
func (c *Client) Request(method, path string) *Request {
	return newRequest(c, strings.ToUpper(method), path)
}

func (c *Client) Get(path string) *Request     { return c.Request(http.MethodGet, path) }
func (c *Client) Head(path string) *Request    { return c.Request(http.MethodHead, path) }
func (c *Client) Post(path string) *Request    { return c.Request(http.MethodPost, path) }
func (c *Client) Put(path string) *Request     { return c.Request(http.MethodPut, path) }
func (c *Client) Patch(path string) *Request   { return c.Request(http.MethodPatch, path) }
func (c *Client) Delete(path string) *Request  { return c.Request(http.MethodDelete, path) }
func (c *Client) Connect(path string) *Request { return c.Request(http.MethodConnect, path) }
func (c *Client) Options(path string) *Request { return c.Request(http.MethodOptions, path) }
func (c *Client) Trace(path string) *Request   { return c.Request(http.MethodTrace, path) }
