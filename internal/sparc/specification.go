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

// TemplateProvider is the narrow view of the Template Registry the
// specification phase optionally consults for a starting baseline. Kept as
// an interface so this package does not import internal/template directly
// (same dependency-direction discipline as taskcoordinator.SPARCRunner).
type TemplateProvider interface {
	FindBest(spec types.ProjectSpec) (types.Specification, bool)
}

// generateSpecification produces the specification phase deliverable from
// the project spec, optionally seeded by the best-matching template.
func generateSpecification(spec types.ProjectSpec, templates TemplateProvider) types.Specification {
	var out types.Specification
	if templates != nil {
		if seed, ok := templates.FindBest(spec); ok {
			out = seed
		}
	}

	for i, req := range spec.Requirements {
		out.FunctionalRequirements = append(out.FunctionalRequirements, types.Requirement{
			ID:          fmt.Sprintf("FR-%d", i+1),
			Title:       req,
			Description: req,
			Priority:    inferRequirementPriority(req),
		})
	}

	out.NonFunctionalRequirements = append(out.NonFunctionalRequirements, defaultNonFunctionalRequirements(spec.Domain)...)
	out.Constraints = append(out.Constraints, spec.Constraints...)
	if len(out.Assumptions) == 0 {
		out.Assumptions = []string{"upstream services described in the project spec are reachable during implementation"}
	}
	out.Dependencies = append(out.Dependencies, inferDependencies(spec.Domain)...)

	for _, fr := range out.FunctionalRequirements {
		out.AcceptanceCriteria = append(out.AcceptanceCriteria, types.AcceptanceCriterion{
			ID:          "AC-" + fr.ID,
			Description: "verifies that " + strings.ToLower(fr.Title) + " behaves as specified",
			CoversReqs:  []string{fr.ID},
		})
	}

	out.RiskAssessment = buildRiskAssessment(spec)
	out.SuccessMetrics = append(out.SuccessMetrics,
		"all functional requirements have at least one passing acceptance criterion",
		"non-functional requirements verified under representative load",
	)
	return out
}

func inferRequirementPriority(description string) types.Priority {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "must") || strings.Contains(lower, "critical"):
		return types.PriorityCritical
	case strings.Contains(lower, "should"):
		return types.PriorityHigh
	default:
		return types.PriorityMedium
	}
}

func defaultNonFunctionalRequirements(domain types.ProjectDomain) []types.Requirement {
	base := []types.Requirement{
		{ID: "NFR-1", Title: "Availability", Description: "the system remains responsive under partial component failure", Priority: types.PriorityHigh},
		{ID: "NFR-2", Title: "Observability", Description: "every operation emits structured logs and metrics", Priority: types.PriorityMedium},
	}
	if domain == types.DomainSwarmCoordination {
		base = append(base, types.Requirement{
			ID: "NFR-3", Title: "Coordination latency", Description: "agent dispatch decisions complete within a bounded budget", Priority: types.PriorityHigh,
		})
	}
	return base
}

func inferDependencies(domain types.ProjectDomain) []string {
	switch domain {
	case types.DomainMemorySystems:
		return []string{"key-value store backend"}
	case types.DomainRestAPI:
		return []string{"http transport layer"}
	case types.DomainWasmIntegration:
		return []string{"wasm runtime host"}
	default:
		return nil
	}
}

func buildRiskAssessment(spec types.ProjectSpec) types.RiskAssessment {
	risks := make([]string, 0, len(spec.Constraints)+1)
	mitigations := make([]string, 0, len(spec.Constraints)+1)
	for _, c := range spec.Constraints {
		risks = append(risks, "constraint may be violated under load: "+c)
		mitigations = append(mitigations, "add a validation gate enforcing: "+c)
	}
	overall := "low"
	switch spec.Complexity {
	case types.ComplexityHigh, types.ComplexityComplex:
		overall = "medium"
	case types.ComplexityEnterprise:
		overall = "high"
	}
	if len(risks) == 0 {
		risks = append(risks, "no explicit constraints supplied; scope creep is the primary risk")
		mitigations = append(mitigations, "review acceptance criteria with stakeholders before implementation begins")
	}
	return types.RiskAssessment{Risks: risks, Mitigations: mitigations, OverallRisk: overall}
}

// validateSpecification checks the six completeness criteria spec.md's
// specification-phase validator names: functional requirements present,
// non-functional requirements present, acceptance criteria present, risk
// assessment present, success metrics present, and every high/critical
// priority functional requirement covered by at least one acceptance
// criterion.
func validateSpecification(spec types.Specification) []types.ValidationResult {
	results := []types.ValidationResult{
		presenceCheck("functional_requirements", len(spec.FunctionalRequirements) > 0,
			"at least one functional requirement is captured"),
		presenceCheck("non_functional_requirements", len(spec.NonFunctionalRequirements) > 0,
			"at least one non-functional requirement is captured"),
		presenceCheck("acceptance_criteria", len(spec.AcceptanceCriteria) > 0,
			"at least one acceptance criterion is captured"),
		presenceCheck("risk_assessment", len(spec.RiskAssessment.Risks) > 0,
			"project risks have been identified"),
		presenceCheck("success_metrics", len(spec.SuccessMetrics) > 0,
			"success metrics are defined"),
	}
	results = append(results, acceptanceCoversHighPriority(spec))
	return results
}

func acceptanceCoversHighPriority(spec types.Specification) types.ValidationResult {
	covered := make(map[string]struct{})
	for _, ac := range spec.AcceptanceCriteria {
		for _, reqID := range ac.CoversReqs {
			covered[reqID] = struct{}{}
		}
	}

	var total, satisfied int
	var missing []string
	for _, fr := range spec.FunctionalRequirements {
		if fr.Priority != types.PriorityHigh && fr.Priority != types.PriorityCritical {
			continue
		}
		total++
		if _, ok := covered[fr.ID]; ok {
			satisfied++
		} else {
			missing = append(missing, fr.ID)
		}
	}

	if total == 0 {
		return types.ValidationResult{Criterion: "acceptance_covers_high_priority", Passed: true, Score: 1,
			Details: "no high/critical priority requirements to cover"}
	}

	score := float64(satisfied) / float64(total)
	result := types.ValidationResult{
		Criterion: "acceptance_covers_high_priority",
		Passed:    satisfied == total,
		Score:     score,
		Details:   fmt.Sprintf("%d/%d high/critical requirements covered by an acceptance criterion", satisfied, total),
	}
	for _, reqID := range missing {
		result.Recommendations = append(result.Recommendations, "add an acceptance criterion covering "+reqID)
	}
	return result
}

func presenceCheck(criterion string, present bool, details string) types.ValidationResult {
	r := types.ValidationResult{Criterion: criterion, Passed: present, Details: details}
	if present {
		r.Score = 1
	} else {
		r.Score = 0
		r.Recommendations = []string{"populate " + criterion + " before leaving the specification phase"}
	}
	return r
}
