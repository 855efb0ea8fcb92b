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

package frontend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/ngnhng/cadence-go/api"
	natsx "github.com/ngnhng/cadence-go/sdk/internal/protocol/nats"
)

// Options configures an embedded frontend. A zero Options listens on a random
// loopback port with no namespace.
type Options struct {
	Host      string
	Port      int
	Namespace string
	Service   string
	// PollWait bounds how long an empty poll is held open. Defaults to one
	// second.
	PollWait  time.Duration
	Logger    *slog.Logger
}

// Embedded is a NATS server plus a frontend handler answering on the
// service subject. It is meant for tests and local development.
type Embedded struct {
	Store   *Store
	Handler *Handler

	srv     *server.Server
	nc      *nats.Conn
	sub     *nats.Subscription
	ns      string
	service string
}

func Start(opts Options) (*Embedded, error) {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = server.RANDOM_PORT
	}
	if opts.Service == "" {
		opts.Service = api.FrontendServiceName
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollWait == 0 {
		opts.PollWait = time.Second
	}

	srv, err := server.NewServer(&server.Options{
		Host:   opts.Host,
		Port:   opts.Port,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready on %s:%d", opts.Host, opts.Port)
	}

	nc, err := nats.Connect(srv.ClientURL(), nats.Name("cadence-frontend"))
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to connect to embedded NATS server: %w", err)
	}

	store := NewStore()
	store.SetPollWait(opts.PollWait)
	h := NewHandler(store, nil, opts.Logger)
	sub, err := Listen(nc, natsx.Subject(opts.Namespace, opts.Service), h)
	if err != nil {
		nc.Close()
		srv.Shutdown()
		return nil, err
	}

	opts.Logger.Debug("embedded frontend started", "url", srv.ClientURL(), "namespace", opts.Namespace)
	return &Embedded{
		Store:   store,
		Handler: h,
		srv:     srv,
		nc:      nc,
		sub:     sub,
		ns:      opts.Namespace,
		service: opts.Service,
	}, nil
}

// URL is the client URL workers dial.
func (e *Embedded) URL() string { return e.srv.ClientURL() }

func (e *Embedded) Namespace() string { return e.ns }

func (e *Embedded) Service() string { return e.service }

// Close stops the handler and shuts the server down.
func (e *Embedded) Close() {
	if e.sub != nil {
		_ = e.sub.Unsubscribe()
	}
	if e.nc != nil {
		e.nc.Close()
	}
	if e.srv != nil {
		e.srv.Shutdown()
		e.srv.WaitForShutdown()
	}
}
