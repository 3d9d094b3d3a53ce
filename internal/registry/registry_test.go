// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package registry

import (
	"errors"
	"testing"

	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

func capSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func TestRegisterAndGet(t *testing.T) {
	r := New()

	agent := types.Agent{ID: "a1", Type: types.AgentCoder, Status: types.AgentIdle, Capabilities: capSet("go")}
	if err := r.Register(agent); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := r.Get("a1")
	if !ok {
		t.Fatal("expected agent to be found")
	}
	if got.ID != "a1" {
		t.Errorf("expected id a1, got %s", got.ID)
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	r := New()
	agent := types.Agent{ID: "a1", Status: types.AgentIdle}

	if err := r.Register(agent); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := r.Register(agent)
	if err == nil {
		t.Fatal("expected AlreadyExists error on duplicate registration")
	}
	if !errors.Is(err, kernelerrors.ErrAlreadyExists) {
		t.Errorf("expected AlreadyExists kind, got %v", err)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	r := New()
	if err := r.Remove("missing"); err != nil {
		t.Errorf("expected no-op remove of unknown agent, got %v", err)
	}
}

func TestRemoveBusyAgentRejected(t *testing.T) {
	r := New()
	agent := types.Agent{ID: "a1", Status: types.AgentIdle, Capabilities: capSet("go")}
	r.Register(agent)

	task := types.Task{ID: "t1", Requirements: capSet("go")}
	if _, ok := r.Assign(task); !ok {
		t.Fatal("expected assignment to succeed")
	}

	err := r.Remove("a1")
	if err == nil {
		t.Fatal("expected Busy error removing an agent with an assigned task")
	}
	if !errors.Is(err, kernelerrors.ErrBusy) {
		t.Errorf("expected Busy kind, got %v", err)
	}
}

func TestAssignFiltersByStatusAndCapabilities(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "busy", Status: types.AgentBusy, Capabilities: capSet("go")})
	r.Register(types.Agent{ID: "wrong-cap", Status: types.AgentIdle, Capabilities: capSet("python")})
	r.Register(types.Agent{ID: "fit", Status: types.AgentIdle, Capabilities: capSet("go", "testing")})

	task := types.Task{ID: "t1", Requirements: capSet("go")}
	id, ok := r.Assign(task)
	if !ok {
		t.Fatal("expected an assignment")
	}
	if id != "fit" {
		t.Errorf("expected fit to be assigned, got %s", id)
	}
}

func TestAssignNoCandidateReturnsFalse(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentBusy, Capabilities: capSet("go")})

	_, ok := r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})
	if ok {
		t.Fatal("expected no assignment when no idle candidate fits")
	}
}

func TestAssignTieBreaksByLowestID(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "z", Status: types.AgentIdle, Capabilities: capSet("go")})
	r.Register(types.Agent{ID: "a", Status: types.AgentIdle, Capabilities: capSet("go")})
	r.Register(types.Agent{ID: "m", Status: types.AgentIdle, Capabilities: capSet("go")})

	id, ok := r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})
	if !ok {
		t.Fatal("expected an assignment")
	}
	if id != "a" {
		t.Errorf("expected tie-break to pick lowest id 'a', got %s", id)
	}
}

func TestCompleteUpdatesPerformanceAndFreesAgent(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentIdle, Capabilities: capSet("go")})
	r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})

	r.Complete("t1", true)

	got, _ := r.Get("a1")
	if got.Status != types.AgentIdle {
		t.Errorf("expected agent back to idle, got %s", got.Status)
	}
	if got.AssignedTask != "" {
		t.Errorf("expected assigned task cleared, got %s", got.AssignedTask)
	}
	if got.Performance.TasksCompleted != 1 {
		t.Errorf("expected tasks_completed=1, got %d", got.Performance.TasksCompleted)
	}
	if got.Performance.ErrorRate != 0 {
		t.Errorf("expected error_rate=0 after a success, got %f", got.Performance.ErrorRate)
	}
}

func TestCompleteUnknownTaskIsNoop(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentIdle})
	r.Complete("never-assigned", true)

	got, _ := r.Get("a1")
	if got.Performance.TasksCompleted != 0 {
		t.Errorf("expected no change on completing an unknown task, got %+v", got.Performance)
	}
}

func TestCompleteFailureRaisesErrorRate(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentIdle, Capabilities: capSet("go")})
	r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})
	r.Complete("t1", false)

	got, _ := r.Get("a1")
	if got.Performance.ErrorRate != 1 {
		t.Errorf("expected error_rate=1 after a sole failure, got %f", got.Performance.ErrorRate)
	}
}

func TestErrorStatusAgentSkippedByDispatch(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentError, Capabilities: capSet("go")})

	_, ok := r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})
	if ok {
		t.Fatal("expected error-status agent to be skipped by dispatch")
	}
}

func TestMetricsAggregation(t *testing.T) {
	r := New()
	r.Register(types.Agent{ID: "a1", Status: types.AgentIdle, Capabilities: capSet("go")})
	r.Register(types.Agent{ID: "a2", Status: types.AgentOffline})

	r.Assign(types.Task{ID: "t1", Requirements: capSet("go")})
	r.Complete("t1", true)

	m := r.Metrics()
	if m.AgentCount != 2 {
		t.Errorf("expected agent_count=2, got %d", m.AgentCount)
	}
	if m.ActiveAgents != 1 {
		t.Errorf("expected active_agents=1 (excluding offline), got %d", m.ActiveAgents)
	}
	if m.CompletedTasks != 1 {
		t.Errorf("expected completed_tasks=1, got %d", m.CompletedTasks)
	}
}
