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

// Package client provides the worker-side client of the Cadence frontend.
//
// # Creating a Client
//
// Either hand the client an established NATS connection:
//
//	nc, err := nats.Connect("nats://localhost:4222")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c, err := client.NewClient(&client.Options{
//		Conn:      nc,
//		Namespace: "production",
//		Logger:    slog.Default(),
//	})
//
// or let it dial from environment configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	c, closeFn, err := client.Dial(cfg, slog.Default())
//	defer closeFn()
//
// # Errors
//
// A declared failure comes back as a *ServiceError and can be matched with
// errors.Is against ErrDomainAlreadyExists, ErrEntityNotExists and the other
// sentinels. A call that never produced a response returns a
// *TransportError. The two never overlap.
//
// # Namespaces
//
// The namespace prefixes every request subject, so clients in different
// namespaces reach different frontends over the same NATS cluster.
package client
