// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package workflow implements the Workflow Engine (spec.md §4.2): named
// workflow definitions executed as ordered step lists, with per-step
// timeouts, gate-based pauses, and strict in-order execution per workflow.
// The engine's goroutine-per-workflow-run shape is grounded in the teacher's
// internal/mergequeue.Coordinator: a config struct with defaults backfilled
// in the constructor, an RWMutex-guarded instance map, and independent
// units of work running concurrently up to a configured bound.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"swarmkernel/internal/idgen"
	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

const component = "workflow"

// handle wraps one workflow instance with the mutex that makes it true that
// "per-workflow state [is] mutated only by its own execution fiber and by
// explicit control operations" (spec.md §5): every read/write of the
// instance goes through handle.mu.
type handle struct {
	mu       sync.Mutex
	instance *types.WorkflowInstance
}

// Engine owns workflow definitions and running instances.
type Engine struct {
	config Config

	defMu       sync.RWMutex
	definitions map[string]types.WorkflowDefinition

	handlers *HandlerRegistry
	gates    GateManager

	instMu    sync.RWMutex
	instances map[string]*handle
	active    map[string]struct{}
}

// New creates a workflow engine. A nil gates manager defaults to
// AutoApprovalGateManager.
func New(cfg Config, handlers *HandlerRegistry, gates GateManager) *Engine {
	if handlers == nil {
		handlers = NewHandlerRegistry()
	}
	if gates == nil {
		gates = AutoApprovalGateManager{}
	}
	return &Engine{
		config:      cfg.withDefaults(),
		definitions: make(map[string]types.WorkflowDefinition),
		handlers:    handlers,
		gates:       gates,
		instances:   make(map[string]*handle),
		active:      make(map[string]struct{}),
	}
}

// RegisterDefinition makes a workflow definition available to StartWorkflow
// by name.
func (e *Engine) RegisterDefinition(def types.WorkflowDefinition) {
	e.defMu.Lock()
	defer e.defMu.Unlock()
	e.definitions[def.Name] = def
}

func (e *Engine) lookupDefinition(name string) (types.WorkflowDefinition, bool) {
	e.defMu.RLock()
	defer e.defMu.RUnlock()
	def, ok := e.definitions[name]
	return def, ok
}

// StartWorkflow resolves defOrName (either a registered name or an inline
// definition) against context, begins asynchronous execution, and returns
// the new workflow's id.
func (e *Engine) StartWorkflow(defOrName any, workflowCtx map[string]any) (string, error) {
	var def types.WorkflowDefinition
	switch v := defOrName.(type) {
	case string:
		found, ok := e.lookupDefinition(v)
		if !ok {
			return "", kernelerrors.New(kernelerrors.KindNotFound, component, "workflow definition "+v+" not found")
		}
		def = found
	case types.WorkflowDefinition:
		def = v
	default:
		return "", kernelerrors.New(kernelerrors.KindValidationFailed, component, "defOrName must be a string name or WorkflowDefinition")
	}

	e.instMu.Lock()
	if len(e.active) >= e.config.MaxConcurrent {
		e.instMu.Unlock()
		return "", kernelerrors.New(kernelerrors.KindConcurrencyLimit, component,
			fmt.Sprintf("max_concurrent=%d reached", e.config.MaxConcurrent))
	}

	if workflowCtx == nil {
		workflowCtx = make(map[string]any)
	}

	id := idgen.New("wf")
	instance := &types.WorkflowInstance{
		ID:           id,
		Definition:   def,
		Status:       types.WorkflowPending,
		Context:      workflowCtx,
		CurrentStep:  0,
		StepResults:  make(map[int]any),
		PendingGates: make(map[string]*types.GateRequest),
		GateResults:  make(map[string]*types.GateResult),
	}
	h := &handle{instance: instance}
	e.instances[id] = h
	e.active[id] = struct{}{}
	e.instMu.Unlock()

	slog.Info("workflow started", "workflow_id", id, "definition", def.Name)

	go e.runFrom(h, 0)

	return id, nil
}

// GetInstance returns a snapshot copy of the instance, safe to read outside
// the engine's locks.
func (e *Engine) GetInstance(id string) (types.WorkflowInstance, bool) {
	e.instMu.RLock()
	h, ok := e.instances[id]
	e.instMu.RUnlock()
	if !ok {
		return types.WorkflowInstance{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.instance, true
}

// CancelWorkflow marks a workflow cancelled, if present. It does not abort
// an in-flight handler — only the top of the next step loop observes it.
func (e *Engine) CancelWorkflow(id string) bool {
	e.instMu.RLock()
	h, ok := e.instances[id]
	e.instMu.RUnlock()
	if !ok {
		return false
	}

	h.mu.Lock()
	terminal := isTerminal(h.instance.Status)
	if !terminal {
		h.instance.Status = types.WorkflowCancelled
		h.instance.EndTime = time.Now()
	}
	h.mu.Unlock()

	if !terminal {
		e.markInactive(id)
		slog.Info("workflow cancelled", "workflow_id", id)
	}
	return !terminal
}

// ResumeAfterGate records an externally-resolved gate decision and, if
// approved, resumes execution from current_step+1.
func (e *Engine) ResumeAfterGate(workflowID, gateID string, approved bool) error {
	e.instMu.RLock()
	h, ok := e.instances[workflowID]
	e.instMu.RUnlock()
	if !ok {
		return kernelerrors.New(kernelerrors.KindNotFound, component, "workflow "+workflowID+" not found")
	}

	h.mu.Lock()
	if h.instance.Status != types.WorkflowPaused || h.instance.PausedForGate == nil || h.instance.PausedForGate.GateID != gateID {
		h.mu.Unlock()
		return kernelerrors.New(kernelerrors.KindPreconditionFail, component,
			"workflow "+workflowID+" is not paused for gate "+gateID)
	}

	result := gateResult(gateID, approved, "", false)
	h.instance.GateResults[gateID] = result
	delete(h.instance.PendingGates, gateID)
	resumeStep := h.instance.PausedForGate.StepIndex + 1
	h.instance.PausedForGate = nil

	if !approved {
		h.instance.Status = types.WorkflowFailed
		h.instance.Error = "gate " + gateID + " rejected"
		h.instance.EndTime = time.Now()
		h.mu.Unlock()
		e.markInactive(workflowID)
		slog.Info("workflow failed: gate rejected", "workflow_id", workflowID, "gate_id", gateID)
		return nil
	}

	h.instance.Status = types.WorkflowRunning
	h.mu.Unlock()

	slog.Info("workflow resumed after gate approval", "workflow_id", workflowID, "gate_id", gateID, "resume_step", resumeStep)
	go e.runFrom(h, resumeStep)
	return nil
}

func (e *Engine) markInactive(id string) {
	e.instMu.Lock()
	delete(e.active, id)
	e.instMu.Unlock()
}

func isTerminal(status types.WorkflowStatus) bool {
	switch status {
	case types.WorkflowCompleted, types.WorkflowFailed, types.WorkflowCancelled:
		return true
	default:
		return false
	}
}

// runFrom executes steps[startStep:] of h's workflow. Strict in-order
// execution per workflow, concurrent across workflows (spec.md §5).
func (e *Engine) runFrom(h *handle, startStep int) {
	h.mu.Lock()
	if isTerminal(h.instance.Status) {
		h.mu.Unlock()
		return
	}
	h.instance.Status = types.WorkflowRunning
	steps := h.instance.Definition.Steps
	h.mu.Unlock()

	for i := startStep; i < len(steps); i++ {
		h.mu.Lock()
		if h.instance.Status != types.WorkflowRunning {
			h.mu.Unlock()
			return
		}
		h.instance.CurrentStep = i
		step := steps[i]
		workflowID := h.instance.ID
		h.mu.Unlock()

		if step.GateConfig != nil {
			decision, pendingReq := e.runGateProtocol(h, i, *step.GateConfig, workflowID)
			switch decision {
			case GateRejected:
				h.mu.Lock()
				h.instance.Status = types.WorkflowFailed
				h.instance.Error = fmt.Sprintf("gate %s rejected at step %d", pendingReq.GateID, i)
				h.instance.EndTime = time.Now()
				h.mu.Unlock()
				e.markInactive(workflowID)
				return
			case GatePending:
				h.mu.Lock()
				h.instance.Status = types.WorkflowPaused
				h.instance.PausedForGate = &types.PausedForGate{StepIndex: i, GateID: pendingReq.GateID, PausedAt: time.Now()}
				h.instance.PendingGates[pendingReq.GateID] = &pendingReq
				h.mu.Unlock()
				return // execution yields
			}
			// GateApproved falls through to handler execution below.
		}

		if err := e.runStep(h, i, step); err != nil {
			h.mu.Lock()
			h.instance.Status = types.WorkflowFailed
			h.instance.Error = err.Error()
			h.instance.EndTime = time.Now()
			h.mu.Unlock()
			e.markInactive(workflowID)
			slog.Error("workflow step failed", "workflow_id", workflowID, "step", i, "error", err)
			return
		}
	}

	h.mu.Lock()
	if h.instance.Status == types.WorkflowRunning {
		h.instance.Status = types.WorkflowCompleted
		h.instance.EndTime = time.Now()
	}
	workflowID := h.instance.ID
	status := h.instance.Status
	h.mu.Unlock()

	e.markInactive(workflowID)
	slog.Info("workflow finished", "workflow_id", workflowID, "status", status)
}

// runGateProtocol evaluates the gate for step i and returns the decision
// plus the constructed GateRequest (needed by the caller when pending or
// rejected).
func (e *Engine) runGateProtocol(h *handle, stepIndex int, cfg types.GateConfig, workflowID string) (GateDecision, types.GateRequest) {
	h.mu.Lock()
	ctxCopy := make(map[string]any, len(h.instance.Context))
	for k, v := range h.instance.Context {
		ctxCopy[k] = v
	}
	h.mu.Unlock()

	gateID := idgen.New("gate")
	req := newGateRequest(gateID, workflowID, stepIndex, ctxCopy, cfg)

	decision := e.gates.Decide(context.Background(), req)
	if decision == GateApproved {
		slog.Info("gate approved", "workflow_id", workflowID, "gate_id", gateID, "step", stepIndex)
	}
	return decision, req
}

// runStep invokes the handler registered for step.Type with a deadline of
// step.TimeoutMs or the engine default, and records the result.
func (e *Engine) runStep(h *handle, index int, step types.StepDefinition) error {
	handler, ok := e.handlers.Lookup(step.Type)
	if !ok {
		return fmt.Errorf("no handler registered for step type %q", step.Type)
	}

	timeoutMs := step.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = e.config.StepTimeoutMs
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	h.mu.Lock()
	workflowCtx := h.instance.Context
	h.mu.Unlock()

	resultCh := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		value, err := handler.Execute(ctx, step.Params, workflowCtx)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- value
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("step %d (%s) timed out after %dms", index, step.Type, timeoutMs)
	case err := <-errCh:
		return fmt.Errorf("step %d (%s) failed: %w", index, step.Type, err)
	case value := <-resultCh:
		h.mu.Lock()
		h.instance.StepResults[index] = value
		h.mu.Unlock()
		return nil
	}
}
