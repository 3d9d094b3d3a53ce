// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package template

import (
	"testing"

	"swarmkernel/pkg/types"
)

func stubTemplate(id string, domain types.ProjectDomain, complexity types.Complexity, hints ...string) Template {
	return Template{
		ID:       id,
		Domain:   domain,
		Metadata: Metadata{Complexity: complexity, RequirementHints: hints},
		GenerateSpecification: func(spec types.ProjectSpec) types.Specification {
			return types.Specification{SuccessMetrics: []string{"seeded by " + id}}
		},
		GeneratePseudocode: func(types.Specification) types.Pseudocode {
			return types.Pseudocode{ControlFlows: []string{"seeded"}}
		},
		GenerateArchitecture: func(types.Pseudocode) (types.Architecture, error) {
			return types.Architecture{DeploymentUnits: []string{"seeded"}}, nil
		},
	}
}

func TestFindBestPrefersMatchingDomainAndCoverage(t *testing.T) {
	r := New()
	r.Register(stubTemplate("t-general", types.DomainGeneral, types.ComplexitySimple))
	r.Register(stubTemplate("t-swarm", types.DomainSwarmCoordination, types.ComplexityModerate, "dispatch tasks to agents"))

	spec := types.ProjectSpec{
		Domain:       types.DomainSwarmCoordination,
		Complexity:   types.ComplexityModerate,
		Requirements: []string{"dispatch tasks to agents by capability"},
	}

	match, ok := r.FindBest(spec)
	if !ok {
		t.Fatal("expected a compatible template")
	}
	if match.Template.ID != "t-swarm" {
		t.Errorf("expected t-swarm to win on domain + coverage, got %s", match.Template.ID)
	}
}

func TestFindBestRejectsLowScoringMismatch(t *testing.T) {
	r := New()
	r.Register(stubTemplate("t-high-complex", types.DomainRestAPI, types.ComplexityHigh))

	spec := types.ProjectSpec{Domain: types.DomainMemorySystems, Complexity: types.ComplexitySimple}
	_, ok := r.FindBest(spec)
	if ok {
		t.Error("expected no compatible template for a mismatched domain and complexity")
	}
}

func TestApplyRunsAllThreeGeneratorsAndTracksUsage(t *testing.T) {
	r := New()
	r.Register(stubTemplate("t-swarm", types.DomainSwarmCoordination, types.ComplexityModerate, "dispatch"))

	spec := types.ProjectSpec{Domain: types.DomainSwarmCoordination, Complexity: types.ComplexityModerate, Name: "demo"}
	specOut, pseudoOut, archOut, report, err := r.Apply("t-swarm", spec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(specOut.SuccessMetrics) == 0 || len(pseudoOut.ControlFlows) == 0 || len(archOut.DeploymentUnits) == 0 {
		t.Error("expected all three generators to have run")
	}
	if report.TemplateID != "t-swarm" {
		t.Errorf("expected a customization report naming the template, got %+v", report)
	}

	count, _, ok := r.Usage("t-swarm")
	if !ok || count != 1 {
		t.Errorf("expected usage count 1, got %d (ok=%v)", count, ok)
	}
}

func TestApplyUnknownTemplateFails(t *testing.T) {
	r := New()
	_, _, _, _, err := r.Apply("missing", types.ProjectSpec{})
	if err == nil {
		t.Fatal("expected an error for an unknown template")
	}
}

func TestSpecSeederFindBestDelegatesToApply(t *testing.T) {
	r := New()
	r.Register(stubTemplate("t-swarm", types.DomainSwarmCoordination, types.ComplexityModerate, "dispatch"))
	seeder := NewSpecSeeder(r)

	spec := types.ProjectSpec{Domain: types.DomainSwarmCoordination, Complexity: types.ComplexityModerate}
	out, ok := seeder.FindBest(spec)
	if !ok {
		t.Fatal("expected a seeded specification")
	}
	if len(out.SuccessMetrics) == 0 {
		t.Error("expected the seeded specification to carry the template's metric")
	}
}

func TestSpecSeederNoMatchReturnsFalse(t *testing.T) {
	r := New()
	seeder := NewSpecSeeder(r)
	_, ok := seeder.FindBest(types.ProjectSpec{Domain: types.DomainGeneral})
	if ok {
		t.Error("expected no seed when the registry is empty")
	}
}
