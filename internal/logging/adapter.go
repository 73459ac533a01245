// Package logging adapts the structured infrastructure logger to the looser
// keys-and-values style the HTTP handlers log with.
package logging

import (
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// Logger is the logging interface the HTTP layer uses: a message followed by
// alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Adapter implements Logger on top of the infrastructure logger.
type Adapter struct {
	log logger.Logger
}

// NewAdapter wraps log in the keys-and-values interface.
func NewAdapter(log logger.Logger) *Adapter {
	return &Adapter{log: log}
}

func (a *Adapter) Debug(msg string, keysAndValues ...any) {
	a.log.Debug(msg, fields(keysAndValues)...)
}

func (a *Adapter) Info(msg string, keysAndValues ...any) {
	a.log.Info(msg, fields(keysAndValues)...)
}

func (a *Adapter) Warn(msg string, keysAndValues ...any) {
	a.log.Warn(msg, fields(keysAndValues)...)
}

func (a *Adapter) Error(msg string, keysAndValues ...any) {
	a.log.Error(msg, fields(keysAndValues)...)
}

// fields pairs up keysAndValues into structured fields. A dangling value or
// a non-string key drops that pair rather than emitting a malformed field.
func fields(keysAndValues []any) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		out = append(out, logger.Any(key, keysAndValues[i+1]))
	}
	return out
}
