package sysexec

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Success(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	res, err := NewExecRunner().Run(context.Background(), "echo", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Stdout)
	assert.Equal(t, "", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	res, err := NewExecRunner().Run(context.Background(), "sh", "-c", "echo 'error message' >&2; exit 3")
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "error message", res.Stderr)
	assert.Contains(t, err.Error(), "exited with code 3: error message")
}

func TestExecRunner_ContextCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := NewExecRunner().Run(ctx, "sleep", "2")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecRunner_CommandNotFound(t *testing.T) {
	res, err := NewExecRunner().Run(context.Background(), "this-command-does-not-exist")
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.Empty(t, res.Stdout)
}

func TestPrimaryOutput(t *testing.T) {
	assert.Equal(t, "err", Result{Stdout: "out", Stderr: "err"}.PrimaryOutput())
	assert.Equal(t, "out", Result{Stdout: "out"}.PrimaryOutput())
	assert.Equal(t, "", Result{}.PrimaryOutput())
}

func TestFake_RecordsCallsAndSynthesisesExitErrors(t *testing.T) {
	fake := &Fake{Handler: func(call Call) Response {
		if call.Args[0] == "fail" {
			return Response{Result: Result{Stderr: "boom", ExitCode: 1}}
		}
		return Response{Result: Result{Stdout: "ok"}}
	}}

	res, err := fake.Run(context.Background(), "tool", "ok", "--flag")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)

	_, err = fake.Run(context.Background(), "tool", "fail")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "boom", exitErr.Output)

	require.Len(t, fake.Calls(), 2)
	assert.Equal(t, "tool ok --flag", fake.Calls()[0].CommandLine())
	assert.Len(t, fake.CallsMatching("fail"), 1)

	fake.Reset()
	assert.Empty(t, fake.Calls())
}
