// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package sparc implements the SPARC Phase Engine (spec.md §4.4): the five
// canonical phases (specification, pseudocode, architecture, refinement,
// completion), each with a per-phase payload, a completeness validator, and
// prerequisite checking against the prior phase's output.
//
// Completeness/coverage scoring throughout this package is grounded in the
// teacher's internal/gates.RequirementsVerificationGate, which computes a
// coverage ratio against a threshold and emits remediation feedback for
// anything below it — generalized here from "did the agent's tests cover
// the requirement" to "did this phase's deliverable satisfy its
// completeness criteria".
package sparc

import "swarmkernel/pkg/types"

// overallScore averages the Score field across a set of validation results,
// the aggregate completeness/quality figure each phase reports.
func overallScore(results []types.ValidationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

// allPassed reports whether every validation criterion passed.
func allPassed(results []types.ValidationResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// boundedRatio clamps count/cap to [0,1], the shared shape behind each
// phase's complexity-score estimate (spec.md §4.4's per-phase metrics).
func boundedRatio(count, cap int) float64 {
	if cap <= 0 {
		return 0
	}
	ratio := float64(count) / float64(cap)
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}
