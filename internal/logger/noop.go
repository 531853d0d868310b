package logger

import (
	"context"

	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// NoOp discards all log entries.
type NoOp struct{}

// NewNoOp returns a ports.Logger that discards everything.
func NewNoOp() ports.Logger {
	return NoOp{}
}

func (NoOp) Debug(context.Context, string, ...interface{}) {}
func (NoOp) Info(context.Context, string, ...interface{})  {}
func (NoOp) Warn(context.Context, string, ...interface{})  {}
func (NoOp) Error(context.Context, string, ...interface{}) {}
func (n NoOp) With(...interface{}) ports.Logger             { return n }
