// Package powershell runs PowerShell scripts and turns their results and
// failures into structured data. Every script is wrapped so that stdout
// carries exactly one JSON envelope:
//
//	{"ok":true,"data":...}
//	{"ok":false,"error":{"category":...,"native_code":...,"hresult":...,"error_id":...,"message":...}}
package powershell

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
	"github.com/alexisbeaulieu97/nosleep/internal/sysexec"
)

// DefaultExecutable is Windows PowerShell, which ships the CIM and NetAdapter
// modules on every supported release.
const DefaultExecutable = "powershell.exe"

// Windows PowerShell writes redirected output in the console's OEM code page
// unless told otherwise, which mangles non-ASCII adapter and device names.
const envelopeTemplate = `[Console]::OutputEncoding = [System.Text.Encoding]::UTF8
$OutputEncoding = [System.Text.Encoding]::UTF8
$ErrorActionPreference = 'Stop'
$ProgressPreference = 'SilentlyContinue'
try {
  $__data = & {
%s
  }
  [pscustomobject]@{ ok = $true; data = $__data } | ConvertTo-Json -Depth 6 -Compress
} catch {
  $__ex = $_.Exception
  $__native = $null
  if ($__ex -is [Microsoft.Management.Infrastructure.CimException]) { $__native = [string]$__ex.NativeErrorCode }
  [pscustomobject]@{ ok = $false; error = [pscustomobject]@{
    category = [string]$_.CategoryInfo.Category
    native_code = $__native
    hresult = ('0x{0:X8}' -f $__ex.HResult)
    error_id = [string]$_.FullyQualifiedErrorId
    message = [string]$__ex.Message
  } } | ConvertTo-Json -Depth 4 -Compress
}`

// Shell executes wrapped scripts through a sysexec.Runner.
type Shell struct {
	runner     sysexec.Runner
	executable string
	logger     ports.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used for invocation diagnostics.
func WithLogger(l ports.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExecutable overrides the PowerShell binary, e.g. pwsh.exe.
func WithExecutable(name string) Option {
	return func(s *Shell) {
		if name != "" {
			s.executable = name
		}
	}
}

// New constructs a Shell.
func New(runner sysexec.Runner, opts ...Option) *Shell {
	s := &Shell{
		runner:     runner,
		executable: DefaultExecutable,
		logger:     logger.NewNoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Envelope is the decoded script result.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorRecord    `json:"error"`
}

// Run executes script and decodes the envelope data into out, which may be
// nil when the script produces no useful value. Script failures are returned
// as *setting.DomainError classified from the error record.
func (s *Shell) Run(ctx context.Context, script string, out interface{}) error {
	start := time.Now()
	res, runErr := s.runner.Run(ctx, s.executable,
		"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass",
		"-EncodedCommand", EncodeCommand(Wrap(script)))
	s.logger.Debug(ctx, "powershell invoked",
		"exit_code", res.ExitCode,
		"duration", time.Since(start),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	env, decodeErr := decodeEnvelope(res.Stdout)
	if decodeErr != nil {
		if runErr != nil {
			return setting.ExecutionFailure("powershell failed", runErr)
		}
		return setting.ParseFailure("powershell returned malformed output", decodeErr)
	}

	if !env.OK {
		if env.Error == nil {
			return setting.ExecutionFailure("powershell reported failure without an error record", runErr)
		}
		return env.Error.Classify()
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return setting.ParseFailure("decode powershell data", err)
	}
	return nil
}

// DecodeList decodes data that PowerShell may have emitted either as a single
// object or as an array. ConvertTo-Json unwraps one-element pipelines, so
// callers that expect a collection use this instead of a plain slice.
func DecodeList[T any](data json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []T{item}, nil
}

// Wrap embeds script in the envelope-producing try/catch.
func Wrap(script string) string {
	return fmt.Sprintf(envelopeTemplate, script)
}

// EncodeCommand encodes a script for -EncodedCommand (base64 of UTF-16LE).
func EncodeCommand(script string) string {
	units := utf16.Encode([]rune(script))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// decodeEnvelope reads the last JSON line of stdout. Host warnings written to
// the output stream can precede it.
func decodeEnvelope(stdout string) (Envelope, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var env Envelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			return Envelope{}, err
		}
		return env, nil
	}
	return Envelope{}, fmt.Errorf("no envelope in output %q", truncate(stdout, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
