// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"testing"

	"swarmkernel/pkg/types"
)

func TestGenerateSpecificationDerivesAcceptanceCriteria(t *testing.T) {
	spec := generateSpecification(types.ProjectSpec{
		Domain:       types.DomainMemorySystems,
		Requirements: []string{"the store must persist values across restarts"},
	}, nil)

	if len(spec.FunctionalRequirements) != 1 {
		t.Fatalf("expected one functional requirement, got %d", len(spec.FunctionalRequirements))
	}
	if spec.FunctionalRequirements[0].Priority != types.PriorityCritical {
		t.Errorf("expected 'must' to infer critical priority, got %s", spec.FunctionalRequirements[0].Priority)
	}
	if len(spec.AcceptanceCriteria) != 1 {
		t.Fatalf("expected one acceptance criterion derived per requirement, got %d", len(spec.AcceptanceCriteria))
	}
	if spec.AcceptanceCriteria[0].CoversReqs[0] != spec.FunctionalRequirements[0].ID {
		t.Error("expected the acceptance criterion to cover the derived requirement")
	}
}

func TestValidateSpecificationFlagsMissingCriteria(t *testing.T) {
	results := validateSpecification(types.Specification{})
	for _, r := range results {
		if r.Criterion != "acceptance_covers_high_priority" && r.Passed {
			t.Errorf("expected criterion %s to fail on an empty specification", r.Criterion)
		}
	}
}

func TestValidateSpecificationPassesWhenHighPriorityCovered(t *testing.T) {
	spec := types.Specification{
		FunctionalRequirements:    []types.Requirement{{ID: "FR-1", Priority: types.PriorityHigh}},
		NonFunctionalRequirements: []types.Requirement{{ID: "NFR-1"}},
		AcceptanceCriteria:        []types.AcceptanceCriterion{{ID: "AC-1", CoversReqs: []string{"FR-1"}}},
		RiskAssessment:            types.RiskAssessment{Risks: []string{"scope creep"}},
		SuccessMetrics:            []string{"all criteria pass"},
	}
	results := validateSpecification(spec)
	if !allPassed(results) {
		t.Errorf("expected all criteria to pass, got %+v", results)
	}
}
