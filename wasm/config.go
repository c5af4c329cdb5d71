package wasm

import "go.uber.org/zap"

// Config holds configuration for module decoding
type Config struct {
	// Logger receives debug output for framing and resolution.
	// nil means the package logger (see SetLogger).
	Logger *zap.Logger

	// MaxNesting bounds how deeply block, loop and if may nest.
	// 0 means unlimited; open constructs are tracked on the heap, so deep
	// input costs memory but never exhausts the goroutine stack.
	MaxNesting int

	// RequireVersion1 rejects preambles whose version is not 1.
	// By default any version is accepted and reported via Preamble.IsDefault.
	RequireVersion1 bool
}

// DefaultConfig returns the configuration used by Decode.
func DefaultConfig() *Config {
	return &Config{}
}

func (c *Config) logger() *zap.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return Logger()
}

func (c *Config) maxNesting() int {
	if c == nil || c.MaxNesting < 0 {
		return 0
	}
	return c.MaxNesting
}
