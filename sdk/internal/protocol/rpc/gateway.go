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

package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
)

// Transport performs one framed request/response exchange. Implementations
// return a *TransportError when the exchange could not complete.
type Transport interface {
	Exchange(ctx context.Context, service, procedure string, payload []byte) ([]byte, error)
}

type callTimeoutKey struct{}

// WithCallTimeout replaces the transport's request timeout for calls made
// with the returned context. Long polls use it to outlive the default.
func WithCallTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, callTimeoutKey{}, d)
}

// CallTimeout returns the override set by WithCallTimeout.
func CallTimeout(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(callTimeoutKey{}).(time.Duration)
	return d, ok && d > 0
}

// Gateway drives Codec and Transport for a single remote service.
type Gateway struct {
	transport Transport
	codec     serde.Codec
	service   string
	logger    *slog.Logger
}

type GatewayOption func(*Gateway)

func WithService(name string) GatewayOption {
	return func(g *Gateway) {
		if name != "" {
			g.service = name
		}
	}
}

func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway defaults to the msgpack codec and the frontend service name.
func NewGateway(t Transport, codec serde.Codec, opts ...GatewayOption) (*Gateway, error) {
	if t == nil {
		return nil, fmt.Errorf("rpc: nil transport")
	}
	if codec == nil {
		codec = &serde.MsgpackSerde{}
	}
	g := &Gateway{
		transport: t,
		codec:     codec,
		service:   api.FrontendServiceName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gateway) Service() string { return g.service }

func (g *Gateway) Codec() serde.Codec { return g.codec }

// Call performs exactly one round-trip for m. It never retries and never
// inspects the result for service-declared failures; see MapError.
func Call[Req any, Resp api.Result](ctx context.Context, g *Gateway, m Method[Req, Resp], req *Req) (Resp, error) {
	var zero Resp
	procedure := m.Procedure()
	start := time.Now()

	payload, err := g.codec.SerializeBinary(req)
	if err != nil {
		observeCall(m.name, outcomeCodecError, start)
		return zero, fmt.Errorf("%w: encode %s request: %w", ErrCodec, m.name, err)
	}

	g.logger.DebugContext(ctx, "rpc call", "service", g.service, "procedure", procedure, "bytes", len(payload))

	reply, err := g.transport.Exchange(ctx, g.service, procedure, payload)
	if err != nil {
		observeCall(m.name, outcomeTransportError, start)
		var te *TransportError
		if errors.As(err, &te) {
			return zero, err
		}
		return zero, NewTransportError(g.service, procedure, TransportIO, err)
	}

	result := m.newResult()
	if err := g.codec.DeserializeBinary(reply, result); err != nil {
		observeCall(m.name, outcomeCodecError, start)
		return zero, fmt.Errorf("%w: decode %s response: %w", ErrCodec, m.name, err)
	}

	observeCall(m.name, outcomeOK, start)
	return result, nil
}
