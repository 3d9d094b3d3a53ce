// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"context"
	"errors"
	"testing"

	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

func testSpec() types.ProjectSpec {
	return types.ProjectSpec{
		Name:         "demo",
		Domain:       types.DomainSwarmCoordination,
		Complexity:   types.ComplexityModerate,
		Requirements: []string{"agents must register with the swarm coordinator", "tasks should be dispatched by capability"},
		Constraints:  []string{"no external network calls during dispatch"},
	}
}

func TestFullPipelineHappyPath(t *testing.T) {
	e := New(nil)
	project := e.CreateProject(testSpec())

	ctx := context.Background()
	for i, phase := range types.CanonicalPhaseOrder {
		result, err := e.ExecutePhase(ctx, project.ID, phase)
		if err != nil {
			t.Fatalf("phase %s failed: %v", phase, err)
		}
		if !result.Success {
			t.Fatalf("phase %s reported failure", phase)
		}
		if result.Metrics.Completeness <= 0 {
			t.Errorf("phase %s: expected a positive completeness score, got %f", phase, result.Metrics.Completeness)
		}
		wantNext := i+1 < len(types.CanonicalPhaseOrder)
		if wantNext && result.NextPhase == nil {
			t.Errorf("phase %s: expected a next phase", phase)
		}
		if !wantNext && result.NextPhase != nil {
			t.Errorf("phase %s: expected no next phase, got %v", phase, *result.NextPhase)
		}
	}

	final, ok := e.GetProject(project.ID)
	if !ok {
		t.Fatal("expected project to be retrievable")
	}
	if final.OverallProgress != 1.0 {
		t.Errorf("expected overall_progress=1.0, got %f", final.OverallProgress)
	}
	if final.Implementation == nil {
		t.Error("expected a completed implementation")
	}

	readiness, err := e.ValidateCompletion(project.ID)
	if err != nil {
		t.Fatalf("ValidateCompletion failed: %v", err)
	}
	if !readiness.HasCodeArtifacts {
		t.Error("expected has_code_artifacts=true")
	}
}

func TestExecutePhaseOutOfOrderFails(t *testing.T) {
	e := New(nil)
	project := e.CreateProject(testSpec())

	_, err := e.ExecutePhase(context.Background(), project.ID, types.PhaseArchitecture)
	if err == nil {
		t.Fatal("expected an error running architecture before specification")
	}
	if !errors.Is(err, kernelerrors.ErrPreconditionFail) {
		t.Errorf("expected a precondition_failed error, got %v", err)
	}
}

func TestExecutePhaseUnknownProject(t *testing.T) {
	e := New(nil)
	_, err := e.ExecutePhase(context.Background(), "does-not-exist", types.PhaseSpecification)
	if !errors.Is(err, kernelerrors.ErrNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestRefineImplementationRequiresArchitecture(t *testing.T) {
	e := New(nil)
	project := e.CreateProject(testSpec())

	_, err := e.RefineImplementation(project.ID, []string{"dispatch is too slow under load"})
	if !errors.Is(err, kernelerrors.ErrPreconditionFail) {
		t.Errorf("expected precondition_failed before architecture exists, got %v", err)
	}

	ctx := context.Background()
	e.ExecutePhase(ctx, project.ID, types.PhaseSpecification)
	e.ExecutePhase(ctx, project.ID, types.PhasePseudocode)
	e.ExecutePhase(ctx, project.ID, types.PhaseArchitecture)

	refinement, err := e.RefineImplementation(project.ID, []string{"dispatch is too slow under load", "tighten input validation for security"})
	if err != nil {
		t.Fatalf("RefineImplementation failed: %v", err)
	}
	if len(refinement.PerformanceOptimizations) == 0 {
		t.Error("expected a performance optimization to be derived from the slow-dispatch feedback")
	}
	if len(refinement.SecurityOptimizations) == 0 {
		t.Error("expected a security optimization to be derived from the validation feedback")
	}

	updated, _ := e.GetProject(project.ID)
	if len(updated.Refinements) != 1 {
		t.Errorf("expected one refinement recorded before the refinement phase formally runs, got %d", len(updated.Refinements))
	}
}

func TestValidateCompletionRequiresImplementation(t *testing.T) {
	e := New(nil)
	project := e.CreateProject(testSpec())
	_, err := e.ValidateCompletion(project.ID)
	if !errors.Is(err, kernelerrors.ErrPreconditionFail) {
		t.Errorf("expected precondition_failed, got %v", err)
	}
}
