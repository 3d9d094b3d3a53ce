// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package swarm implements the Swarm Coordinator (spec.md §4.1's topology
// coordination contract and §2's component table): lifecycle glue around
// the Agent Registry plus the coordinate_swarm fan-out. The fan-out is
// grounded in the teacher's internal/orchestration.Coordinator.executeAgentWave
// (semaphore-bounded goroutine wave over an errChan), generalized from
// dependency-ordered agent execution to the independently-parallel,
// no-ordering-guarantee per-agent sync the spec requires.
package swarm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"swarmkernel/internal/registry"
	"swarmkernel/pkg/types"
)

// Coordinator wraps an agent Registry with topology-wide coordination.
type Coordinator struct {
	registry *registry.Registry

	// perAgentBudget bounds how long a single agent's coordination step may
	// run before it is treated as a coordination:error observation.
	perAgentBudget time.Duration
}

// New creates a swarm coordinator over registry.
func New(reg *registry.Registry) *Coordinator {
	return &Coordinator{registry: reg, perAgentBudget: 2 * time.Second}
}

// Registry exposes the underlying agent registry.
func (c *Coordinator) Registry() *registry.Registry {
	return c.registry
}

// CoordinationResult is returned by CoordinateSwarm (spec.md §4.1).
type CoordinationResult struct {
	SuccessCount int
	Latencies    []time.Duration
	SuccessRate  float64
	AvgLatency   time.Duration
	Success      bool
}

// Topology is currently informational; reserved for future dispatch
// strategies (spec.md §4.1: "Topology parameter currently informational").
type Topology string

const (
	TopologyMesh  Topology = "mesh"
	TopologyRing  Topology = "ring"
	TopologyStar  Topology = "star"
	TopologyFlat  Topology = "flat"
)

// CoordinateSwarm synchronizes each agent into the registry (see
// coordinateOne for what is written) within a bounded per-agent budget, independently and in
// parallel — there is no ordering guarantee between agents (spec.md §5
// "Scheduling model").
func (c *Coordinator) CoordinateSwarm(ctx context.Context, agents []types.Agent, _ Topology) CoordinationResult {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		latencies  = make([]time.Duration, 0, len(agents))
	)

	for _, agent := range agents {
		wg.Add(1)
		go func(a types.Agent) {
			defer wg.Done()

			start := time.Now()
			stepCtx, cancel := context.WithTimeout(ctx, c.perAgentBudget)
			defer cancel()

			err := c.coordinateOne(stepCtx, a)
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			latencies = append(latencies, elapsed)
			if err != nil {
				slog.Warn("coordination:error", "agent_id", a.ID, "error", err)
				return
			}
			successes++
		}(agent)
	}

	wg.Wait()

	result := CoordinationResult{SuccessCount: successes, Latencies: latencies}
	if len(agents) > 0 {
		result.SuccessRate = float64(successes) / float64(len(agents))
	}
	if len(latencies) > 0 {
		var total time.Duration
		for _, l := range latencies {
			total += l
		}
		result.AvgLatency = total / time.Duration(len(latencies))
	}
	result.Success = result.SuccessRate > 0.80

	return result
}

// coordinateOne registers an unknown agent with its status and
// capabilities, or updates the status of an already-registered agent,
// respecting ctx's deadline. The capabilities of an already-registered
// agent are not updated; the registry keeps those it was registered with.
func (c *Coordinator) coordinateOne(ctx context.Context, agent types.Agent) error {
	done := make(chan error, 1)
	go func() {
		existing, found := c.registry.Get(agent.ID)
		if !found {
			done <- c.registry.Register(agent)
			return
		}
		existing.Status = agent.Status
		existing.Capabilities = agent.Capabilities
		done <- c.registry.SetStatus(existing.ID, agent.Status)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
