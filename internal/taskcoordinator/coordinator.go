// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package taskcoordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"swarmkernel/internal/registry"
	"swarmkernel/pkg/types"
)

// SPARCRunner delegates a task to the SPARC Phase Engine and awaits
// completion. Implemented by internal/sparc's project engine; kept as a
// narrow interface here so this package does not import the SPARC engine
// directly (dependency direction matches spec.md §2's control flow: Task
// Coordinator -> SPARC Engine, never the reverse).
type SPARCRunner interface {
	RunProject(ctx context.Context, req TaskRequest) (SPARCOutcome, error)
}

// SPARCOutcome is what a SPARCRunner reports back.
type SPARCOutcome struct {
	Success          bool
	ArtifactsByPhase map[types.SPARCPhase][]string
}

// Coordinator routes tasks directly (via the agent registry) or to the
// SPARC pipeline, and records outcomes and history.
type Coordinator struct {
	registry *registry.Registry
	executor AgentExecutor
	sparc    SPARCRunner

	mu      sync.Mutex
	history []Outcome
}

// New creates a task coordinator over the given agent registry, direct
// executor, and SPARC runner.
func New(reg *registry.Registry, executor AgentExecutor, sparc SPARCRunner) *Coordinator {
	return &Coordinator{registry: reg, executor: executor, sparc: sparc}
}

// Route decides direct vs SPARC per the routing rule and runs the task.
func (c *Coordinator) Route(ctx context.Context, req TaskRequest) (Outcome, error) {
	if useSPARC(req) {
		return c.runSPARC(ctx, req)
	}
	return c.runDirect(ctx, req)
}

func (c *Coordinator) runDirect(ctx context.Context, req TaskRequest) (Outcome, error) {
	resolvedType := resolveSubagentType(req.SubagentType)
	optimal := isOptimalSpecialization(req, resolvedType)
	execCtx := buildExecutionContext(req, resolvedType, optimal)

	task := types.Task{
		ID:           req.ID,
		Type:         resolvedType,
		Description:  req.Description,
		Priority:     req.Priority,
		Requirements: map[string]struct{}{resolvedType: {}},
	}

	agentID, assigned := c.registry.Assign(task)

	deadline, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	start := time.Now()
	result, err := c.executor.Execute(deadline, execCtx)
	elapsed := time.Since(start)

	outcome := Outcome{
		TaskID:             req.ID,
		AgentUsed:          agentID,
		ExecutionTimeMs:    float64(elapsed.Milliseconds()),
		MethodologyApplied: MethodologyDirect,
		RecordedAt:         time.Now(),
	}

	if err != nil {
		outcome.Success = false
		outcome.Error = err.Error()
	} else {
		outcome.Success = result.Success
		outcome.Output = result.Output
		outcome.ToolsUsed = result.ToolsUsed
	}

	if assigned {
		c.registry.Complete(req.ID, outcome.Success)
	}

	c.record(outcome)
	return outcome, nil
}

func (c *Coordinator) runSPARC(ctx context.Context, req TaskRequest) (Outcome, error) {
	if c.sparc == nil {
		outcome := Outcome{
			TaskID:             req.ID,
			Success:            false,
			Error:              "no SPARC runner configured",
			MethodologyApplied: MethodologySPARC,
			RecordedAt:         time.Now(),
		}
		c.record(outcome)
		return outcome, fmt.Errorf("task %s requires SPARC but no runner is configured", req.ID)
	}

	start := time.Now()
	result, err := c.sparc.RunProject(ctx, req)
	elapsed := time.Since(start)

	outcome := Outcome{
		TaskID:             req.ID,
		Success:            result.Success,
		ExecutionTimeMs:    float64(elapsed.Milliseconds()),
		MethodologyApplied: MethodologySPARC,
		ArtifactsByPhase:   result.ArtifactsByPhase,
		RecordedAt:         time.Now(),
	}
	if err != nil {
		outcome.Success = false
		outcome.Error = err.Error()
	}

	c.record(outcome)
	return outcome, err
}

func (c *Coordinator) record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, o)
}

// Metrics is the aggregate view over recorded history (spec.md §4.3).
type Metrics struct {
	SuccessRate        float64
	AvgSuccessDurationMs float64
	PerAgentUsage      map[string]int
	PerToolUsage       map[string]int
}

// Metrics computes success rate, average duration of successful tasks, and
// per-agent/per-tool usage counts over the full history.
func (c *Coordinator) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := Metrics{PerAgentUsage: make(map[string]int), PerToolUsage: make(map[string]int)}
	if len(c.history) == 0 {
		return m
	}

	var successes int
	var successDurationSum float64
	for _, o := range c.history {
		if o.Success {
			successes++
			successDurationSum += o.ExecutionTimeMs
		}
		if o.AgentUsed != "" {
			m.PerAgentUsage[o.AgentUsed]++
		}
		for _, tool := range o.ToolsUsed {
			m.PerToolUsage[tool]++
		}
	}

	m.SuccessRate = float64(successes) / float64(len(c.history))
	if successes > 0 {
		m.AvgSuccessDurationMs = successDurationSum / float64(successes)
	}
	return m
}

// History returns a copy of the recorded outcomes.
func (c *Coordinator) History() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.history))
	copy(out, c.history)
	return out
}
