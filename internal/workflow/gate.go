// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package workflow

import (
	"context"
	"time"

	"swarmkernel/pkg/types"
)

// GateDecision is returned by a GateManager's Decide call.
type GateDecision int

const (
	// GateApproved means execution continues past the gated step.
	GateApproved GateDecision = iota
	// GateRejected means the workflow fails with a gate-rejection reason.
	GateRejected
	// GatePending means the decision is deferred to an external caller via
	// resume_after_gate; the workflow pauses.
	GatePending
)

// GateManager evaluates a GateRequest and returns an immediate decision.
// This is the generalized successor to the teacher's internal/gates.Gate
// interface: the teacher's Gate.Check(ctx) verified anti-cheat invariants
// (test immutability, empirical honesty) about completed work; this
// interface instead asks whether a business-approval checkpoint clears
// before work proceeds. The shape — a single synchronous decision point,
// composable in a chain — is carried over; the concrete TCR checks are not
// (see DESIGN.md).
type GateManager interface {
	Decide(ctx context.Context, req types.GateRequest) GateDecision
}

// AutoApprovalGateManager is the default GateManager: auto_approval gates
// approve immediately, everything else defers to an external decision via
// resume_after_gate (spec.md §4.2 gate protocol).
type AutoApprovalGateManager struct{}

func (AutoApprovalGateManager) Decide(_ context.Context, req types.GateRequest) GateDecision {
	if req.AutoApproval {
		return GateApproved
	}
	return GatePending
}

// GateChain composes multiple GateManagers, analogous to the teacher's
// GateChain.Execute sequencing multiple Gate checks: the first manager to
// return a non-pending decision wins; if every manager defers, the overall
// decision is pending.
type GateChain struct {
	managers []GateManager
}

// NewGateChain builds a chain evaluated in order.
func NewGateChain(managers ...GateManager) *GateChain {
	return &GateChain{managers: managers}
}

func (c *GateChain) Decide(ctx context.Context, req types.GateRequest) GateDecision {
	for _, m := range c.managers {
		switch d := m.Decide(ctx, req); d {
		case GateApproved, GateRejected:
			return d
		}
	}
	return GatePending
}

// GateBuilder assembles a GateChain fluently, mirroring the teacher's
// GateBuilder pattern for constructing a GateChain from named gates.
type GateBuilder struct {
	chain GateChain
}

func NewGateBuilder() *GateBuilder {
	return &GateBuilder{}
}

func (b *GateBuilder) With(manager GateManager) *GateBuilder {
	b.chain.managers = append(b.chain.managers, manager)
	return b
}

func (b *GateBuilder) Build() *GateChain {
	return &b.chain
}

// newGateRequest builds a GateRequest for a gated step.
func newGateRequest(gateID, workflowID string, stepIndex int, workflowCtx map[string]any, cfg types.GateConfig) types.GateRequest {
	return types.GateRequest{
		GateID:         gateID,
		StepIndex:      stepIndex,
		WorkflowID:     workflowID,
		WorkflowCtx:    workflowCtx,
		BusinessImpact: cfg.BusinessImpact,
		Stakeholders:   cfg.Stakeholders,
		TimeoutMs:      cfg.TimeoutMs,
		AutoApproval:   cfg.AutoApproval,
	}
}

func gateResult(gateID string, approved bool, reason string, autoApplied bool) *types.GateResult {
	return &types.GateResult{
		GateID:      gateID,
		Approved:    approved,
		Reason:      reason,
		DecidedAt:   time.Now(),
		AutoApplied: autoApplied,
	}
}
