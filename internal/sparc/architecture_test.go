// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"testing"

	"swarmkernel/pkg/types"
)

func TestGenerateArchitectureDerivesComponentsFromPseudocode(t *testing.T) {
	pseudo := types.Pseudocode{
		Algorithms:     []types.AlgorithmSpec{{Name: "DispatchTask"}},
		DataStructures: []types.DataStructureSpec{{Name: "AgentRegistry"}},
	}

	arch, err := generateArchitecture(pseudo)
	if err != nil {
		t.Fatalf("generateArchitecture failed: %v", err)
	}

	var foundService, foundManager bool
	for _, c := range arch.Components {
		if c.Name == "DispatchTaskService" {
			foundService = true
		}
		if c.Name == "AgentRegistryManager" {
			foundManager = true
		}
	}
	if !foundService {
		t.Error("expected a service component derived from the algorithm")
	}
	if !foundManager {
		t.Error("expected a data-manager component derived from the data structure")
	}

	results := validateArchitecture(arch)
	if !allPassed(results) {
		t.Errorf("expected a well-formed architecture to pass validation, got %+v", results)
	}
}

func TestValidateArchitectureFlagsUnresolvedDependency(t *testing.T) {
	arch := types.Architecture{
		Components: []types.ArchComponent{
			{Name: "Orphan", Kind: types.ComponentService, DependsOn: []string{"Nonexistent"}},
		},
	}
	results := validateArchitecture(arch)
	for _, r := range results {
		if r.Criterion == "dependencies_resolved" && r.Passed {
			t.Error("expected dependencies_resolved to fail for a dangling dependency")
		}
	}
}

func TestValidateArchitectureFlagsMissingInterfaces(t *testing.T) {
	arch := types.Architecture{
		Components: []types.ArchComponent{{Name: "Bare", Kind: types.ComponentService}},
	}
	results := validateArchitecture(arch)
	for _, r := range results {
		if r.Criterion == "interfaces_defined" && r.Passed {
			t.Error("expected interfaces_defined to fail when a component declares no interface")
		}
	}
}
