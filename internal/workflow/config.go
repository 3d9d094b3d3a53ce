// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package workflow

// Config holds the Workflow Engine's tunables (spec.md §4.2 Configuration).
// Follows the teacher's internal/mergequeue.CoordinatorConfig idiom: a plain
// struct with zero-value-means-default fields, defaults applied once in the
// constructor.
type Config struct {
	MaxConcurrent    int
	StepTimeoutMs    int64
	PersistWorkflows bool
	PersistencePath  string
	RetryAttempts    int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 10,
		StepTimeoutMs: 30000,
		RetryAttempts: 3,
	}
}

// withDefaults fills zero-valued fields with DefaultConfig's values, the
// same way the teacher's mergequeue.NewCoordinator backfills CoordinatorConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.StepTimeoutMs <= 0 {
		c.StepTimeoutMs = d.StepTimeoutMs
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = d.RetryAttempts
	}
	return c
}
