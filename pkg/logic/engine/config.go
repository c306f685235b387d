package engine

import (
	"fmt"
)

// EngineConfig contains configuration for the evaluation engine.
type EngineConfig struct {
	// MaxDepth bounds condition nesting during evaluation. Deeper nodes evaluate
	// false and raise a depth_exceeded diagnostic.
	// Default: 10.
	MaxDepth int

	// Parallelism is the number of fields resolved and validated concurrently.
	// Values below 2 evaluate sequentially.
	// Default: 1.
	Parallelism int

	// ParallelThreshold is the minimum field count before Parallelism applies.
	// Default: 64.
	ParallelThreshold int

	// Messages overrides error message templates by reason code.
	Messages map[string]string
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxDepth:          10,
		Parallelism:       1,
		ParallelThreshold: 64,
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive", ErrInvalidConfig)
	}
	if c.MaxDepth > 1000 {
		return fmt.Errorf("%w: max depth %d exceeds 1000", ErrInvalidConfig, c.MaxDepth)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism cannot be negative", ErrInvalidConfig)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("%w: parallel threshold cannot be negative", ErrInvalidConfig)
	}
	for reason, template := range c.Messages {
		if template == "" {
			return fmt.Errorf("%w: empty message template for reason %q", ErrInvalidConfig, reason)
		}
	}
	return nil
}

// WithMaxDepth sets the condition depth ceiling.
func (c *EngineConfig) WithMaxDepth(depth int) *EngineConfig {
	c.MaxDepth = depth
	return c
}

// WithParallelism sets the per-field worker count.
func (c *EngineConfig) WithParallelism(workers int) *EngineConfig {
	c.Parallelism = workers
	return c
}

// WithParallelThreshold sets the minimum field count for parallel evaluation.
func (c *EngineConfig) WithParallelThreshold(fields int) *EngineConfig {
	c.ParallelThreshold = fields
	return c
}

// WithMessages overrides message templates by reason code.
func (c *EngineConfig) WithMessages(messages map[string]string) *EngineConfig {
	c.Messages = messages
	return c
}
