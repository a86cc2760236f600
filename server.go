package supertest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
)

// LoopbackHost is the address every ephemeral server binds to and the domain
// cookies are stored under.
const LoopbackHost = "127.0.0.1"

// App is the application under test. Listen starts it on a free loopback port and
// returns once it accepts connections, or returns the startup error.
type App interface {
	Listen(ctx context.Context) (Server, error)
}

// Server is a running App. Close stops accepting connections and releases the port.
type Server interface {
	Addr() net.Addr
	Close() error
}

// AppFunc adapts a function to App.
type AppFunc func(ctx context.Context) (Server, error)

func (f AppFunc) Listen(ctx context.Context) (Server, error) {
	return f(ctx)
}

// HandlerApp serves h from a fresh http.Server on every Listen.
func HandlerApp(h http.Handler) App {
	return handlerApp{handler: h}
}

type handlerApp struct {
	handler http.Handler
}

func (a handlerApp) Listen(ctx context.Context) (Server, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(LoopbackHost, "0"))
	if err != nil {
		return nil, err
	}

	s := &handlerServer{
		srv: &http.Server{
			Handler:           a.handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:   ln,
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		s.serveErr = s.srv.Serve(ln)
	}()
	return s, nil
}

type handlerServer struct {
	srv      *http.Server
	ln       net.Listener
	done     chan struct{}
	serveErr error
}

func (s *handlerServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Close closes the listener and every open connection, then waits for Serve to return.
func (s *handlerServer) Close() error {
	err := s.srv.Close()
	<-s.done
	if s.serveErr != nil && !errors.Is(s.serveErr, http.ErrServerClosed) {
		err = multierror.Append(err, s.serveErr).ErrorOrNil()
	}
	return err
}

// withServer starts app, runs fn against its address and always closes the server
// before returning. A close failure is added to whatever fn returned.
func withServer(ctx context.Context, app App, logger *slog.Logger,
	fn func(addr net.Addr) (*Response, error)) (resp *Response, err error) {
	srv, err := app.Listen(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, err)
	}
	if srv == nil {
		return nil, fmt.Errorf("%w: app returned no server", ErrListen)
	}
	logger.Debug("withServer: listening", "addr", srv.Addr().String())

	defer func() {
		closeErr := srv.Close()
		logger.Debug("withServer: closed", "addr", srv.Addr().String(), "error", closeErr)
		if closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("close server: %w", closeErr)).ErrorOrNil()
			resp = nil
		}
	}()

	return fn(srv.Addr())
}
