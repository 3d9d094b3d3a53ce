// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"context"
	"fmt"

	"swarmkernel/internal/taskcoordinator"
	"swarmkernel/pkg/types"
)

// ProjectRunner adapts Engine to taskcoordinator.SPARCRunner, so a task
// routed to the SPARC methodology can drive a project through all five
// phases in one call. It is defined here (not in taskcoordinator) to keep
// the dependency direction spec.md §2 describes: Task Coordinator depends
// on a narrow interface, the SPARC engine depends on the Task Coordinator's
// request/outcome types, never the reverse.
type ProjectRunner struct {
	engine *Engine
}

// NewProjectRunner wraps an Engine as a taskcoordinator.SPARCRunner.
func NewProjectRunner(engine *Engine) *ProjectRunner {
	return &ProjectRunner{engine: engine}
}

// RunProject creates a project from the task request and drives it through
// specification, pseudocode, architecture, refinement, and completion in
// order, stopping at the first phase failure.
func (r *ProjectRunner) RunProject(ctx context.Context, req taskcoordinator.TaskRequest) (taskcoordinator.SPARCOutcome, error) {
	spec := types.ProjectSpec{
		Name:         req.ID,
		Domain:       inferDomain(req),
		Complexity:   inferComplexity(req),
		Requirements: []string{req.Description},
	}
	if req.SourceDocument != nil {
		spec.Requirements = append(spec.Requirements, req.SourceDocument.AcceptanceCriteria...)
	}

	project := r.engine.CreateProject(spec)
	artifacts := make(map[types.SPARCPhase][]string)

	for _, phase := range types.CanonicalPhaseOrder {
		select {
		case <-ctx.Done():
			return taskcoordinator.SPARCOutcome{Success: false, ArtifactsByPhase: artifacts}, ctx.Err()
		default:
		}

		result, err := r.engine.ExecutePhase(ctx, project.ID, phase)
		if err != nil {
			return taskcoordinator.SPARCOutcome{Success: false, ArtifactsByPhase: artifacts},
				fmt.Errorf("sparc phase %s failed for project %s: %w", phase, project.ID, err)
		}
		artifacts[phase] = result.Deliverables
	}

	return taskcoordinator.SPARCOutcome{Success: true, ArtifactsByPhase: artifacts}, nil
}

func inferDomain(req taskcoordinator.TaskRequest) types.ProjectDomain {
	if req.SourceDocument == nil {
		return types.DomainGeneral
	}
	for _, tag := range req.SourceDocument.Tags {
		switch tag {
		case "swarm", "coordination":
			return types.DomainSwarmCoordination
		case "memory":
			return types.DomainMemorySystems
		case "api":
			return types.DomainRestAPI
		case "wasm":
			return types.DomainWasmIntegration
		}
	}
	return types.DomainGeneral
}

func inferComplexity(req taskcoordinator.TaskRequest) types.Complexity {
	switch req.Priority {
	case types.PriorityCritical:
		return types.ComplexityEnterprise
	case types.PriorityHigh:
		return types.ComplexityHigh
	default:
		if req.SourceDocument != nil && len(req.SourceDocument.AcceptanceCriteria) > 3 {
			return types.ComplexityModerate
		}
		return types.ComplexitySimple
	}
}
