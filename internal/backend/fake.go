package backend

import (
	"context"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are registered
// per subcommand and consumed FIFO, with the last response sticky so a
// single stub can serve repeated calls. A Handle hook takes precedence
// when set, giving a test full control (delays, call-order games).
//
// Every invocation is recorded; CallCount is the spy tests use to
// prove that validation failures and cache hits spawn nothing.
type FakeRunner struct {
	mu     sync.Mutex
	stubs  map[string][]fakeReply
	calls  []Request
	Handle func(ctx context.Context, req Request) (Result, error)
}

type fakeReply struct {
	res Result
	err error
}

// NewFakeRunner returns an empty fake. Calls without a matching stub
// fail with a backend error so tests notice missing setup.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{stubs: make(map[string][]fakeReply)}
}

// Stub registers a successful JSON response for a subcommand
// ("list", "show", "stats", "dep add", ...).
func (f *FakeRunner) Stub(op, stdout string) {
	f.StubResult(op, Result{Stdout: []byte(stdout)}, nil)
}

// StubError registers a failure for a subcommand.
func (f *FakeRunner) StubError(op string, err error) {
	f.StubResult(op, Result{ExitCode: -1}, err)
}

// StubExit registers a non-zero exit with the given stderr, wrapped the
// way ExecRunner wraps real failures.
func (f *FakeRunner) StubExit(op string, code int, stderr string) {
	f.StubResult(op, Result{ExitCode: code, Stderr: []byte(stderr)}, &Error{
		Kind:   KindBackend,
		Op:     op,
		Detail: "exit status",
		Stderr: stderr,
	})
}

// StubResult registers a raw result for a subcommand.
func (f *FakeRunner) StubResult(op string, res Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs[op] = append(f.stubs[op], fakeReply{res: res, err: err})
}

// Run records the call and replies from the script.
func (f *FakeRunner) Run(ctx context.Context, req Request) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	handle := f.Handle
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if handle != nil {
		return handle(ctx, req)
	}

	op := Operation(req.Args)

	f.mu.Lock()
	defer f.mu.Unlock()
	replies := f.stubs[op]
	if len(replies) == 0 {
		return Result{ExitCode: 1}, &Error{
			Kind:   KindBackend,
			Op:     op,
			Detail: "no stub registered",
		}
	}
	reply := replies[0]
	if len(replies) > 1 {
		f.stubs[op] = replies[1:]
	}
	return reply.res, reply.err
}

// Calls returns a copy of every recorded invocation.
func (f *FakeRunner) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of subprocess invocations so far.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// CallsFor counts invocations of one subcommand.
func (f *FakeRunner) CallsFor(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if Operation(c.Args) == op {
			n++
		}
	}
	return n
}

// Reset clears recorded calls but keeps stubs.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
