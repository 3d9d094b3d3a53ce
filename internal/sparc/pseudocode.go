// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"fmt"
	"strings"

	"swarmkernel/pkg/types"
)

// generatePseudocode derives one algorithm per functional requirement and
// one data structure per declared dependency of the prior phase (spec.md §4.4.2:
// the pseudocode phase requires a completed specification as input).
func generatePseudocode(spec types.Specification) types.Pseudocode {
	var out types.Pseudocode

	for i, fr := range spec.FunctionalRequirements {
		alg := types.AlgorithmSpec{
			Name:       algorithmName(fr.Title, i),
			Parameters: []string{"input", "context"},
			Returns:    "result, error",
			Steps: []string{
				"validate input against preconditions",
				"execute core logic for: " + fr.Title,
				"emit result or a typed error on failure",
			},
			Complexity: estimateComplexity(fr),
		}
		out.Algorithms = append(out.Algorithms, alg)
	}

	seen := make(map[string]struct{})
	for _, dep := range spec.Dependencies {
		name := dataStructureName(dep)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out.DataStructures = append(out.DataStructures, types.DataStructureSpec{
			Name:        name,
			Description: "backs " + dep,
			Operations:  []string{"store", "retrieve", "delete"},
		})
	}
	if len(out.DataStructures) == 0 {
		out.DataStructures = append(out.DataStructures, types.DataStructureSpec{
			Name:        "InMemoryState",
			Description: "holds transient state for requirements with no external dependency",
			Operations:  []string{"get", "set"},
		})
	}

	out.ControlFlows = []string{"sequential validation then execution, short-circuiting on the first failed precondition"}
	out.Optimizations = []string{"cache repeated lookups keyed by requirement id"}
	out.Dependencies = append(out.Dependencies, spec.Dependencies...)
	out.ComplexityAnalysis = aggregateComplexity(out.Algorithms)
	return out
}

func algorithmName(title string, index int) string {
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, "")
	if name == "" {
		name = fmt.Sprintf("Algorithm%d", index+1)
	}
	return name
}

func dataStructureName(dependency string) string {
	words := strings.Fields(strings.ReplaceAll(dependency, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}

// estimateComplexity derives a rough complexity profile from requirement
// priority: higher priority requirements are assumed to carry more
// validation and branching.
func estimateComplexity(fr types.Requirement) types.ComplexityAnalysis {
	switch fr.Priority {
	case types.PriorityCritical, types.PriorityHigh:
		return types.ComplexityAnalysis{
			Time: "O(n log n)", Space: "O(n)", Scalability: "horizontal",
			WorstCase: "O(n^2) under adversarial input", AverageCase: "O(n log n)", BestCase: "O(n)",
			Bottlenecks: []string{"validation pass over the full input set"},
		}
	default:
		return types.ComplexityAnalysis{
			Time: "O(n)", Space: "O(1)", Scalability: "horizontal",
			WorstCase: "O(n)", AverageCase: "O(n)", BestCase: "O(1)",
		}
	}
}

func aggregateComplexity(algorithms []types.AlgorithmSpec) types.ComplexityAnalysis {
	if len(algorithms) == 0 {
		return types.ComplexityAnalysis{Time: "O(1)", Space: "O(1)", Scalability: "n/a"}
	}
	worst := algorithms[0].Complexity
	for _, alg := range algorithms[1:] {
		if len(alg.Complexity.Bottlenecks) > len(worst.Bottlenecks) {
			worst = alg.Complexity
		}
	}
	return types.ComplexityAnalysis{
		Time: worst.Time, Space: worst.Space, Scalability: worst.Scalability,
		WorstCase: worst.WorstCase, AverageCase: worst.AverageCase, BestCase: worst.BestCase,
		Bottlenecks: worst.Bottlenecks,
	}
}

// validatePseudocode checks that at least one algorithm exists, a complexity
// analysis was produced, and at least one data structure is declared. It
// does not check which data structure each algorithm uses.
func validatePseudocode(p types.Pseudocode) []types.ValidationResult {
	results := []types.ValidationResult{
		presenceCheck("algorithms_present", len(p.Algorithms) > 0, "at least one algorithm is specified"),
		presenceCheck("complexity_analysis_present", p.ComplexityAnalysis.Time != "", "an aggregate complexity analysis is recorded"),
		presenceCheck("data_structures_present", len(p.DataStructures) > 0, "at least one data structure is specified"),
	}
	return results
}
