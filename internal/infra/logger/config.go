package logger

// Config controls how New builds a logger.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, error, fatal.
	Level string `env:"LOG_LEVEL" yaml:"level"`
	// Format is accepted for config compatibility; output is always JSON.
	Format string `env:"LOG_FORMAT" yaml:"format"`
	// Development disables log sampling so every line is visible.
	Development bool `yaml:"development"`
	// OutputPaths lists the files or URLs to write to. Defaults to stdout.
	OutputPaths []string `yaml:"output_paths"`
}

const (
	defaultLevel  = "info"
	defaultFormat = "json"
)

// SetDefaults fills unset fields with the package defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = defaultLevel
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}
