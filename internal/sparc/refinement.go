// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"strconv"
	"strings"

	"swarmkernel/pkg/types"
)

// classifyFeedback buckets free-text feedback lines into the four
// refinement categories by keyword match. This is an Open Question
// resolution (spec.md §9 leaves classification unspecified): a line is
// assigned to every category whose keyword it contains, defaulting to
// code-quality when none match, so no feedback is silently dropped.
func classifyFeedback(lines []string) types.RefinementFeedback {
	var fb types.RefinementFeedback
	for _, line := range lines {
		lower := strings.ToLower(line)
		matched := false
		if containsAny(lower, "latency", "throughput", "slow", "performance") {
			fb.PerformanceIssues = append(fb.PerformanceIssues, line)
			matched = true
		}
		if containsAny(lower, "auth", "vulnerab", "secur", "exploit") {
			fb.SecurityIssues = append(fb.SecurityIssues, line)
			matched = true
		}
		if containsAny(lower, "scale", "load", "capacity", "concurrent") {
			fb.ScalabilityIssues = append(fb.ScalabilityIssues, line)
			matched = true
		}
		if !matched {
			fb.CodeQualityIssues = append(fb.CodeQualityIssues, line)
		}
	}
	return fb
}

// generateRefinement produces optimization strategies from classified
// feedback and applies the performance/security/scalability optimizations
// back onto a copy of the architecture (spec.md §4.4.4: refinement mutates a
// derived architecture, never the original in place).
func generateRefinement(arch types.Architecture, feedback types.RefinementFeedback) types.Refinement {
	var out types.Refinement

	out.SecurityOptimizations = itemsFor(feedback.SecurityIssues, "CRITICAL", "harden")
	out.PerformanceOptimizations = itemsFor(feedback.PerformanceIssues, "HIGH", "optimize")
	out.ScalabilityOptimizations = itemsFor(feedback.ScalabilityIssues, "HIGH", "scale")
	out.CodeQualityOptimizations = itemsFor(feedback.CodeQualityIssues, "MEDIUM", "refactor")

	out.OptimizationStrategies = append(out.OptimizationStrategies, out.SecurityOptimizations...)
	out.OptimizationStrategies = append(out.OptimizationStrategies, out.PerformanceOptimizations...)
	out.OptimizationStrategies = append(out.OptimizationStrategies, out.ScalabilityOptimizations...)
	out.OptimizationStrategies = append(out.OptimizationStrategies, out.CodeQualityOptimizations...)

	refined := arch
	refined.Components = append([]types.ArchComponent(nil), arch.Components...)
	if len(out.PerformanceOptimizations) > 0 {
		for i := range refined.Components {
			if refined.Components[i].LatencyTargetMs > 0 {
				refined.Components[i].LatencyTargetMs *= 0.8
			}
		}
	}
	if len(out.SecurityOptimizations) > 0 {
		refined.SecurityRequirements = append(refined.SecurityRequirements, "mitigate issues raised during refinement review")
	}
	if len(out.ScalabilityOptimizations) > 0 {
		refined.ScalabilityRequirements = append(refined.ScalabilityRequirements, "add autoscaling policy for components under sustained load")
	}
	out.RefinedArchitecture = &refined

	out.BenchmarkResults = []string{"baseline latency and throughput captured before optimization"}
	out.ImprovementMetrics = []string{"latency target reduced by 20% for flagged components"}
	return out
}

func itemsFor(issues []string, priority, verb string) []types.OptimizationItem {
	items := make([]types.OptimizationItem, 0, len(issues))
	for i, issue := range issues {
		items = append(items, types.OptimizationItem{
			Name:        verb + "-" + strconv.Itoa(i+1),
			Priority:    priority,
			Description: verb + " in response to: " + issue,
		})
	}
	return items
}

// validateRefinement checks that at least one optimization strategy was
// produced and that a refined architecture was attached.
func validateRefinement(r types.Refinement) []types.ValidationResult {
	return []types.ValidationResult{
		presenceCheck("optimization_strategies_present", len(r.OptimizationStrategies) > 0,
			"at least one optimization strategy was derived from feedback"),
		presenceCheck("refined_architecture_present", r.RefinedArchitecture != nil,
			"a refined architecture was produced"),
	}
}
