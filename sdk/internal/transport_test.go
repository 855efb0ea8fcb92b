package internal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	service   string
	procedure string
	request   any
	// callTimeout is the rpc.WithCallTimeout override, zero when unset.
	callTimeout time.Duration
}

// fakeTransport decodes each request through the method table and answers
// with the handler registered for the method.
type fakeTransport struct {
	codec serde.MsgpackSerde

	mu       sync.Mutex
	handlers map[string]func(req any) api.Result
	calls    []recordedCall
	attempt  int
	err      error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]func(req any) api.Result)}
}

func (f *fakeTransport) on(method string, fn func(req any) api.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = fn
}

func (f *fakeTransport) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTransport) Exchange(ctx context.Context, service, procedure string, payload []byte) ([]byte, error) {
	f.mu.Lock()
	f.attempt++
	transportErr := f.err
	f.mu.Unlock()
	if transportErr != nil {
		return nil, rpc.NewTransportError(service, procedure, rpc.TransportUnreachable, transportErr)
	}

	mi, ok := rpc.Lookup(procedure)
	if !ok {
		return nil, rpc.NewTransportError(service, procedure, rpc.TransportRemote, fmt.Errorf("unknown procedure"))
	}
	req := mi.NewRequest()
	if err := f.codec.DeserializeBinary(payload, req); err != nil {
		return nil, err
	}

	f.mu.Lock()
	callTimeout, _ := rpc.CallTimeout(ctx)
	f.calls = append(f.calls, recordedCall{service: service, procedure: procedure, request: req, callTimeout: callTimeout})
	handler := f.handlers[mi.Name]
	f.mu.Unlock()

	var res api.Result
	if handler != nil {
		res = handler(req)
	} else {
		res = mi.NewResponse()
	}
	return f.codec.SerializeBinary(res)
}

func (f *fakeTransport) callsTo(method string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.procedure == rpc.ProcedureName(method) {
			out = append(out, c)
		}
	}
	return out
}

// attempts counts every Exchange, including failed ones.
func (f *fakeTransport) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempt
}

func newTestClient(t *testing.T, transport rpc.Transport) WorkflowService {
	t.Helper()
	c, err := NewClient(&ClientOptions{Transport: transport, Identity: "7@test-host"})
	require.NoError(t, err)
	return c
}
