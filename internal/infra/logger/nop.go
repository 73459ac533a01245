package logger

// NoOpLogger discards everything. Used in tests and wherever logging
// must be disabled.
type NoOpLogger struct{}

// NewNop creates a new no-op logger instance.
func NewNop() Logger {
	return &NoOpLogger{}
}

// Debug does nothing.
func (l *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing.
func (l *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing.
func (l *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing.
func (l *NoOpLogger) Error(_ string, _ ...Field) {}

// Fatal does nothing (does not exit in no-op mode).
func (l *NoOpLogger) Fatal(_ string, _ ...Field) {}

// With returns the same no-op logger.
func (l *NoOpLogger) With(_ ...Field) Logger {
	return l
}

// Sync does nothing and returns nil.
func (l *NoOpLogger) Sync() error {
	return nil
}
