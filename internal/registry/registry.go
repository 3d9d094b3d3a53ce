// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package registry implements the Agent Registry and Dispatcher (spec.md
// §4.1): the authoritative, mutable store of agent lifecycle, capability
// filtering, deterministic scored assignment, and rolling performance
// counters. It is grounded in the teacher's pkg/agent.Manager for its single-
// RWMutex map-of-agents discipline, generalized from a name/program/model
// record to the full Agent/capability/performance shape this spec requires.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

const component = "registry"

// assignedTask tracks an in-flight assignment so Complete can compute
// duration and update rolling averages.
type assignedTask struct {
	taskID    string
	agentID   string
	startTime time.Time
}

// Registry is the authoritative store for agent lifecycle. Assign marks
// the chosen agent busy; Complete frees it back to idle and is the only
// method that updates performance counters; SetStatus applies explicit
// status transitions to any value (spec.md §4.1, §5 "Shared state").
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]*types.Agent
	inFlight map[string]*assignedTask // task id -> assignment

	startedAt     time.Time
	totalTasks    int
	completedTask int
}

// New creates an empty agent registry.
func New() *Registry {
	return &Registry{
		agents:   make(map[string]*types.Agent),
		inFlight: make(map[string]*assignedTask),
		startedAt: time.Now(),
	}
}

// Register inserts a new agent. Fails with AlreadyExists if id is present.
func (r *Registry) Register(agent types.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[agent.ID]; exists {
		slog.Warn("agent registration rejected: already exists", "agent_id", agent.ID)
		return kernelerrors.New(kernelerrors.KindAlreadyExists, component, "agent "+agent.ID+" already registered")
	}

	if agent.Capabilities == nil {
		agent.Capabilities = make(map[string]struct{})
	}
	if agent.Connections == nil {
		agent.Connections = make(map[string]struct{})
	}
	agent.RegisteredAt = time.Now()
	r.agents[agent.ID] = agent.Clone()

	slog.Info("agent registered", "agent_id", agent.ID, "type", agent.Type)
	return nil
}

// Remove deletes an agent. No-op if absent. Rejects with Busy if the agent
// currently holds an assigned task — the caller must complete or reassign
// the task first.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return nil
	}
	if agent.AssignedTask != "" {
		slog.Warn("agent removal rejected: has assigned task", "agent_id", id, "task_id", agent.AssignedTask)
		return kernelerrors.New(kernelerrors.KindBusy, component, "agent "+id+" holds an assigned task")
	}

	delete(r.agents, id)
	slog.Info("agent removed", "agent_id", id)
	return nil
}

// Get returns a copy of the agent with the given id.
func (r *Registry) Get(id string) (types.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return types.Agent{}, false
	}
	return *agent.Clone(), true
}

// Filter is applied by List to narrow the returned agent set. A zero-value
// Filter returns every agent.
type Filter struct {
	Status *types.AgentStatus
	Type   *types.AgentType
}

func (f Filter) matches(a *types.Agent) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Type != nil && a.Type != *f.Type {
		return false
	}
	return true
}

// List returns agents matching filter, sorted by id for deterministic output.
func (r *Registry) List(filter Filter) []types.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		if filter.matches(a) {
			out = append(out, *a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveIDs returns ids of agents whose status is idle or busy, sorted.
func (r *Registry) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, a := range r.agents {
		if a.Status == types.AgentIdle || a.Status == types.AgentBusy {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Assign selects the best-fit idle agent for task per the scoring formula
// (spec.md §4.1): score = tasks_completed - 100*error_rate - avg_response_ms/1000,
// ties broken by lowest id. Returns ("", false) if no agent fits; assignment
// never errors.
func (r *Registry) Assign(task types.Task) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *types.Agent
	var bestScore float64

	for _, a := range r.agents {
		if a.Status != types.AgentIdle {
			continue
		}
		if !a.HasCapabilities(task.Requirements) {
			continue
		}

		score := score(a.Performance)
		if best == nil || score > bestScore || (score == bestScore && a.ID < best.ID) {
			best = a
			bestScore = score
		}
	}

	if best == nil {
		return "", false
	}

	best.Status = types.AgentBusy
	best.AssignedTask = task.ID
	r.inFlight[task.ID] = &assignedTask{taskID: task.ID, agentID: best.ID, startTime: time.Now()}
	r.totalTasks++

	slog.Info("task assigned", "task_id", task.ID, "agent_id", best.ID, "score", bestScore)
	return best.ID, true
}

func score(p types.Performance) float64 {
	return float64(p.TasksCompleted) - 100*p.ErrorRate - p.AvgResponseMs/1000
}

// Complete flips the assigned agent's status back to idle and updates its
// rolling performance counters. Completion of an unknown task id is a
// silent no-op (idempotent), per spec.md §4.1.
func (r *Registry) Complete(taskID string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignment, ok := r.inFlight[taskID]
	if !ok {
		return
	}
	delete(r.inFlight, taskID)

	agent, ok := r.agents[assignment.agentID]
	if !ok {
		return
	}

	durationMs := float64(time.Since(assignment.startTime).Milliseconds())
	n := agent.Performance.TasksCompleted
	agent.Performance.AvgResponseMs = (agent.Performance.AvgResponseMs*float64(n) + durationMs) / float64(n+1)

	failureDelta := 0.0
	if !success {
		failureDelta = 1
	}
	priorFailures := agent.Performance.ErrorRate * float64(n)
	agent.Performance.ErrorRate = (priorFailures + failureDelta) / float64(n+1)

	agent.Performance.TasksCompleted++
	agent.Status = types.AgentIdle
	agent.AssignedTask = ""

	r.completedTask++

	slog.Info("task completed", "task_id", taskID, "agent_id", assignment.agentID, "success", success, "duration_ms", durationMs)
}

// SetStatus transitions an agent's status explicitly (e.g. error -> idle
// recovery). Returns NotFound if the agent does not exist.
func (r *Registry) SetStatus(id string, status types.AgentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return kernelerrors.New(kernelerrors.KindNotFound, component, "agent "+id+" not found")
	}
	agent.Status = status
	return nil
}

// Metrics is the continuously-maintained aggregate view (spec.md §4.1).
type Metrics struct {
	AgentCount    int
	ActiveAgents  int
	TotalTasks    int
	CompletedTasks int
	AvgResponseMs float64
	Throughput    float64
	ErrorRate     float64
	UptimeMs      int64
}

// Metrics computes the current aggregate snapshot.
func (r *Registry) Metrics() Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := Metrics{
		AgentCount: len(r.agents),
		TotalTasks: r.totalTasks,
		CompletedTasks: r.completedTask,
		UptimeMs:   time.Since(r.startedAt).Milliseconds(),
	}

	var responseSum, errorSum float64
	for _, a := range r.agents {
		if a.Status != types.AgentOffline {
			m.ActiveAgents++
		}
		responseSum += a.Performance.AvgResponseMs
		errorSum += a.Performance.ErrorRate
	}
	if m.AgentCount > 0 {
		m.AvgResponseMs = responseSum / float64(m.AgentCount)
		m.ErrorRate = errorSum / float64(m.AgentCount)
	}

	uptimeMin := time.Since(r.startedAt).Minutes()
	if uptimeMin > 0 {
		m.Throughput = float64(r.completedTask) / uptimeMin
	}

	return m
}
