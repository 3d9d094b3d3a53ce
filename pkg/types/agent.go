// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package types holds the dependency-free, serializable data model shared
// across the coordination kernel: agents, tasks, workflows, and SPARC
// projects. Types here are pure data (no behavior) so they can cross package
// boundaries, be persisted through the KV store, and be hosted by a Temporal
// workflow without carrying runtime handles.
package types

import "time"

// AgentStatus is the lifecycle status of a registered agent.
type AgentStatus string

const (
	AgentIdle    AgentStatus = "idle"
	AgentBusy    AgentStatus = "busy"
	AgentError   AgentStatus = "error"
	AgentOffline AgentStatus = "offline"
)

// AgentType is drawn from the fixed taxonomy of worker specializations.
type AgentType string

const (
	AgentResearcher  AgentType = "researcher"
	AgentCoder       AgentType = "coder"
	AgentAnalyst     AgentType = "analyst"
	AgentTester      AgentType = "tester"
	AgentCoordinator AgentType = "coordinator"
	AgentArchitect   AgentType = "architect"
	AgentDebugger    AgentType = "debugger"
)

// Performance tracks an agent's rolling execution statistics.
type Performance struct {
	TasksCompleted int
	AvgResponseMs  float64
	ErrorRate      float64
}

// Agent is a worker with an id, a type, capabilities, and performance counters.
type Agent struct {
	ID            string
	Type          AgentType
	Status        AgentStatus
	Capabilities  map[string]struct{}
	Performance   Performance
	Connections   map[string]struct{}
	AssignedTask  string // task id currently held, "" if idle
	RegisteredAt  time.Time
}

// HasCapabilities reports whether the agent's capability set is a superset
// of required.
func (a *Agent) HasCapabilities(required map[string]struct{}) bool {
	for c := range required {
		if _, ok := a.Capabilities[c]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the agent, safe to hand to callers outside
// the registry's lock.
func (a *Agent) Clone() *Agent {
	clone := *a
	clone.Capabilities = make(map[string]struct{}, len(a.Capabilities))
	for k := range a.Capabilities {
		clone.Capabilities[k] = struct{}{}
	}
	clone.Connections = make(map[string]struct{}, len(a.Connections))
	for k := range a.Connections {
		clone.Connections[k] = struct{}{}
	}
	return &clone
}

// Priority is a named task priority; numeric priorities 1-10 also apply, see
// PriorityFromInt.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PriorityFromInt maps the 1..10 numeric priority scale onto the named
// buckets: 1-3 low, 4-6 medium, 7-8 high, 9-10 critical.
func PriorityFromInt(n int) Priority {
	switch {
	case n >= 9:
		return PriorityCritical
	case n >= 7:
		return PriorityHigh
	case n >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// TaskStatus is the lifecycle status of a dispatched task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskAssigned  TaskStatus = "assigned"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a unit of work requesting capabilities and, optionally, a deadline.
type Task struct {
	ID           string
	Type         string
	Description  string
	Priority     Priority
	Requirements map[string]struct{}
	Deadline     *time.Time
	Dependencies []string

	Status     TaskStatus
	AssignedTo string // agent id, "" if unassigned
	StartTime  time.Time
	EndTime    time.Time
}

// TaskResult is the outcome recorded by the dispatcher's complete() call.
type TaskResult struct {
	TaskID        string
	Success       bool
	Output        string
	DurationMs    float64
	CompletedAt   time.Time
}
