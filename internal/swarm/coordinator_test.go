// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import (
	"context"
	"testing"

	"swarmkernel/internal/registry"
	"swarmkernel/pkg/types"
)

func TestCoordinateSwarmRegistersNewAgents(t *testing.T) {
	reg := registry.New()
	c := New(reg)

	agents := []types.Agent{
		{ID: "a1", Status: types.AgentIdle, Capabilities: map[string]struct{}{"go": {}}},
		{ID: "a2", Status: types.AgentIdle},
		{ID: "a3", Status: types.AgentIdle},
	}

	result := c.CoordinateSwarm(context.Background(), agents, TopologyMesh)

	if result.SuccessCount != 3 {
		t.Errorf("expected 3 successes, got %d", result.SuccessCount)
	}
	if !result.Success {
		t.Errorf("expected overall success (rate > 0.80), got rate=%f", result.SuccessRate)
	}
	if len(result.Latencies) != 3 {
		t.Errorf("expected 3 latency samples, got %d", len(result.Latencies))
	}

	for _, id := range []string{"a1", "a2", "a3"} {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("expected agent %s to be registered after coordination", id)
		}
	}
}

func TestCoordinateSwarmUpdatesExistingAgentStatus(t *testing.T) {
	reg := registry.New()
	reg.Register(types.Agent{ID: "a1", Status: types.AgentBusy})
	c := New(reg)

	agents := []types.Agent{{ID: "a1", Status: types.AgentIdle}}
	c.CoordinateSwarm(context.Background(), agents, TopologyMesh)

	got, _ := reg.Get("a1")
	if got.Status != types.AgentIdle {
		t.Errorf("expected status synced to idle, got %s", got.Status)
	}
}

func TestCoordinateSwarmEmptyAgentList(t *testing.T) {
	reg := registry.New()
	c := New(reg)

	result := c.CoordinateSwarm(context.Background(), nil, TopologyMesh)
	if result.SuccessCount != 0 {
		t.Errorf("expected 0 successes for empty input, got %d", result.SuccessCount)
	}
	if result.Success {
		t.Error("expected success=false when there is nothing to coordinate")
	}
}
