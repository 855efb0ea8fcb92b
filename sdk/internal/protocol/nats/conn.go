// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
)

// DefaultRequestTimeout bounds a round-trip when the configuration sets none.
const DefaultRequestTimeout = 10 * time.Second

// Conn is the NATS request/reply transport for rpc.Gateway.
type Conn struct {
	nc             *nats.Conn
	ns             string
	encoding       string
	requestTimeout time.Duration
	logger         *slog.Logger
}

var _ rpc.Transport = (*Conn)(nil)

// Config is the dependency-injected interface required for establishing connections.
type Config interface {
	Endpoint() string
	NATSMaxReconnects() int
	NATSReconnectWait() time.Duration
	NATSDrainTimeout() time.Duration
	NATSPingInterval() time.Duration
	NATSMaxPingsOut() int
	// Optional human readable client name; may return empty.
	NATSClientName() string
	// Namespace prefixes every RPC subject; may return empty.
	Namespace() string
	RequestTimeout() time.Duration
}

// Option customises a Conn after it is created.
type Option func(*Conn)

func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithEncoding sets the Rpc-Encoding header value sent with each request.
func WithEncoding(enc string) Option {
	return func(c *Conn) {
		if enc != "" {
			c.encoding = enc
		}
	}
}

// Connect establishes a connection to NATS with the given configuration.
func Connect(cfg Config, opts ...Option) (*Conn, error) {
	if cfg == nil {
		return nil, fmt.Errorf("natz: nil config provided")
	}

	clientName := cfg.NATSClientName()
	if clientName == "" {
		clientName = "cadence-go-worker"
	}
	conn := newConn(cfg.Namespace(), append([]Option{WithRequestTimeout(cfg.RequestTimeout())}, opts...))

	natsOpts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(cfg.NATSMaxReconnects()),
		nats.ReconnectWait(cfg.NATSReconnectWait()),
		nats.DrainTimeout(cfg.NATSDrainTimeout()),
		nats.PingInterval(cfg.NATSPingInterval()),
		nats.MaxPingsOutstanding(cfg.NATSMaxPingsOut()),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			conn.logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			conn.logger.Warn("nats disconnected", "error", err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			conn.logger.Debug("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.Endpoint(), natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Endpoint(), err)
	}
	conn.nc = nc
	return conn, nil
}

// Open dials host:port with library defaults.
func Open(host string, port int, opts ...Option) (*Conn, error) {
	url := fmt.Sprintf("nats://%s:%d", host, port)
	nc, err := nats.Connect(url, nats.Name("cadence-go-worker"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	conn := newConn("", opts)
	conn.nc = nc
	return conn, nil
}

// Wrap adopts an existing connection. Close still closes nc.
func Wrap(nc *nats.Conn, namespace string, opts ...Option) (*Conn, error) {
	if nc == nil {
		return nil, fmt.Errorf("natz: nil connection provided")
	}
	conn := newConn(namespace, opts)
	conn.nc = nc
	return conn, nil
}

func newConn(namespace string, opts []Option) *Conn {
	c := &Conn{
		ns:             strings.TrimSpace(namespace),
		encoding:       api.EncodingMsgpack,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subject returns the subject a service listens on, e.g. "rpc.cadence-frontend"
// or "ns1.rpc.cadence-frontend".
func Subject(namespace, service string) string {
	subj := fmt.Sprintf(api.RPCSubjectPattern, service)
	if namespace == "" {
		return subj
	}
	return namespace + "." + subj
}

func (c *Conn) Namespace() string { return c.ns }

// Subject is the package Subject bound to this connection's namespace.
func (c *Conn) Subject(service string) string { return Subject(c.ns, service) }

// Exchange sends payload to service as procedure and waits for the reply.
// Every round-trip is bounded by the request timeout, or the override from
// rpc.WithCallTimeout, even when ctx carries a later deadline.
func (c *Conn) Exchange(ctx context.Context, service, procedure string, payload []byte) ([]byte, error) {
	if c.nc == nil || c.nc.IsClosed() {
		return nil, rpc.NewTransportError(service, procedure, rpc.TransportUnreachable, nats.ErrConnectionClosed)
	}

	timeout := c.requestTimeout
	if d, ok := rpc.CallTimeout(ctx); ok {
		timeout = d
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg := nats.NewMsg(c.Subject(service))
	msg.Header.Set(api.RPCServiceHeader, service)
	msg.Header.Set(api.RPCProcedureHeader, procedure)
	msg.Header.Set(api.RPCEncodingHeader, c.encoding)
	msg.Data = payload

	reply, err := c.nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return nil, rpc.NewTransportError(service, procedure, classify(err), err)
	}
	if remote := reply.Header.Get(api.RPCErrorHeader); remote != "" {
		return nil, rpc.NewTransportError(service, procedure, rpc.TransportRemote, errors.New(remote))
	}
	return reply.Data, nil
}

func classify(err error) rpc.TransportErrorKind {
	switch {
	case errors.Is(err, nats.ErrNoResponders),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining):
		return rpc.TransportUnreachable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
		return rpc.TransportTimeout
	case errors.Is(err, context.Canceled):
		return rpc.TransportCanceled
	default:
		return rpc.TransportIO
	}
}

// NATS returns the underlying NATS connection.
func (c *Conn) NATS() *nats.Conn {
	return c.nc
}

// IsConnected returns whether the NATS connection is currently connected.
func (c *Conn) IsConnected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

func (c *Conn) Close() {
	if c.nc != nil && !c.nc.IsClosed() {
		c.nc.Close()
	}
}
