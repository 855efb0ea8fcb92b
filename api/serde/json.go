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

package serde

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ngnhng/cadence-go/api"
)

var _ Codec = (*JsonSerde)(nil)

// JsonSerde is the canonical interchange form for heartbeat details and
// activity payloads. Map keys are emitted sorted so equal values encode to
// equal bytes.
type JsonSerde struct{}

func (j *JsonSerde) Encoding() string { return api.EncodingJSON }

func (j *JsonSerde) SerializeBinary(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("json serialization failed: %w", err)
	}
	return data, nil
}

// DeserializeBinary rejects trailing data after the first JSON value.
func (j *JsonSerde) DeserializeBinary(data []byte, valuePtr any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(valuePtr); err != nil {
		return fmt.Errorf("json deserialization failed: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("json deserialization failed: trailing data after value")
	}
	return nil
}
