package sysexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation observed by Fake.
type Call struct {
	Name string
	Args []string
}

// CommandLine joins the call into a single space separated string.
func (c Call) CommandLine() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is a canned reply for Fake.
type Response struct {
	Result Result
	Err    error
}

// Fake is an in-memory Runner for tests. Handler decides the reply for each
// call; when Handler is nil every call succeeds with empty output.
type Fake struct {
	Handler func(call Call) Response

	mu    sync.Mutex
	calls []Call
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) (Result, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	if f.Handler == nil {
		return Result{}, nil
	}
	resp := f.Handler(call)
	if resp.Err == nil && resp.Result.ExitCode != 0 {
		resp.Err = &ExitError{Name: name, ExitCode: resp.Result.ExitCode, Output: resp.Result.PrimaryOutput()}
	}
	return resp.Result, resp.Err
}

// Calls returns a snapshot of every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsMatching returns the recorded invocations whose command line contains
// substr.
func (f *Fake) CallsMatching(substr string) []Call {
	var out []Call
	for _, call := range f.Calls() {
		if strings.Contains(call.CommandLine(), substr) {
			out = append(out, call)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// String helps when a test fails on an unexpected call sequence.
func (f *Fake) String() string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, call := range calls {
		lines[i] = fmt.Sprintf("%d: %s", i, call.CommandLine())
	}
	return strings.Join(lines, "\n")
}
