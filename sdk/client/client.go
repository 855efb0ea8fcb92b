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

package client

import (
	"fmt"
	"log/slog"

	"github.com/ngnhng/cadence-go/sdk/config"
	"github.com/ngnhng/cadence-go/sdk/internal"
	natz "github.com/ngnhng/cadence-go/sdk/internal/protocol/nats"
)

// Client is the worker-side view of the Cadence frontend.
//
// Every method sends one request to the frontend and maps the declared
// failure of the response to a typed error. Calls that never produced a
// response return a transport error instead; use IsTransportError to tell
// them apart.
//
// Example:
//
//	c, err := client.NewClient(&client.Options{Conn: nc})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = c.RegisterDomain(ctx, &api.RegisterDomainRequest{Name: "sample"})
//	if errors.Is(err, client.ErrDomainAlreadyExists) {
//		// fine
//	}
type Client = internal.WorkflowService

// Options contains configuration for creating a new Client.
type Options = internal.ClientOptions

// NewClient creates a new Client with the provided Options.
//
// Returns an error if Options is nil or carries neither Conn nor Transport.
func NewClient(options *Options) (Client, error) {
	return internal.NewClient(options)
}

// Dial connects to NATS using cfg and returns a Client over that connection
// together with a function that closes it.
func Dial(cfg *config.Config, logger *slog.Logger) (Client, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("client: nil config")
	}
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := natz.Connect(cfg, natz.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	c, err := internal.NewClient(&internal.ClientOptions{
		Transport:   conn,
		Service:     cfg.Frontend.Service,
		Identity:    cfg.Worker.Identity,
		PollTimeout: cfg.Timeouts.PollTimeout,
		Logger:      logger,
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return c, conn.Close, nil
}
