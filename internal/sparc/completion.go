// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"fmt"

	"swarmkernel/pkg/types"
)

const (
	minCoveragePercent    = 90.0
	minDocumentationCount = 5
	minReadinessAverage   = 85.0
)

// generateImplementation produces artifact records (not compiled output,
// per spec.md's explicit non-goal on real code generation) for every
// component in the refined architecture, plus tests, docs, configuration,
// and a production readiness scorecard.
func generateImplementation(arch types.Architecture) types.Implementation {
	var out types.Implementation

	for _, c := range arch.Components {
		path := "internal/" + lowerFirst(string(c.Kind)) + "/" + c.Name + ".go"
		out.SourceCode = append(out.SourceCode, types.SourceArtifact{
			Path: path, Language: "Go", Type: "source", Dependencies: c.DependsOn,
		})
		out.TestSuites = append(out.TestSuites, types.SourceArtifact{
			Path: path[:len(path)-3] + "_test.go", Language: "Go", Type: "test", Dependencies: []string{path},
		})
	}

	out.Documentation = []types.SourceArtifact{
		{Path: "DESIGN.md", Language: "Markdown", Type: "doc"},
		{Path: "README.md", Language: "Markdown", Type: "doc"},
		{Path: "docs/architecture.md", Language: "Markdown", Type: "doc"},
		{Path: "docs/operations.md", Language: "Markdown", Type: "doc"},
		{Path: "docs/api.md", Language: "Markdown", Type: "doc"},
	}
	out.ConfigurationFiles = []types.SourceArtifact{
		{Path: "config/kernel.yaml", Language: "YAML", Type: "config"},
	}
	out.DeploymentScripts = []types.SourceArtifact{
		{Path: "deploy/docker-compose.yaml", Language: "YAML", Type: "script"},
	}
	out.MonitoringDashboards = []types.SourceArtifact{
		{Path: "monitoring/dashboard.json", Language: "JSON", Type: "dashboard"},
	}
	out.SecurityConfigurations = []types.SourceArtifact{
		{Path: "config/security-policy.yaml", Language: "YAML", Type: "config"},
	}

	out.TestCoveragePercent = estimateCoverage(out.SourceCode, out.TestSuites)
	out.ProductionReadinessChecks = []types.ProductionReadinessCheck{
		{Name: "tests_passing", Score: 95},
		{Name: "monitoring_configured", Score: 90},
		{Name: "security_review", Score: 88},
		{Name: "rollback_plan", Score: 80},
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// estimateCoverage is grounded in internal/gates.RequirementsVerificationGate's
// calculateCoverage: here, coverage is the ratio of source artifacts that
// have a matching test artifact.
func estimateCoverage(source, tests []types.SourceArtifact) float64 {
	if len(source) == 0 {
		return 0
	}
	testedPaths := make(map[string]struct{}, len(tests))
	for _, t := range tests {
		for _, dep := range t.Dependencies {
			testedPaths[dep] = struct{}{}
		}
	}
	var covered int
	for _, s := range source {
		if _, ok := testedPaths[s.Path]; ok {
			covered++
		}
	}
	return 100 * float64(covered) / float64(len(source))
}

// validateCompletion checks the completion phase's four readiness bars:
// non-empty code artifacts, coverage >= minCoveragePercent, documentation
// count >= minDocumentationCount, and average readiness score >=
// minReadinessAverage.
func validateCompletion(impl types.Implementation) []types.ValidationResult {
	codeResult := presenceCheck("has_code_artifacts", len(impl.SourceCode) > 0, "at least one source artifact recorded")

	coverageResult := types.ValidationResult{
		Criterion: "coverage_meets_bar",
		Passed:    impl.TestCoveragePercent >= minCoveragePercent,
		Score:     boundedRatio(int(impl.TestCoveragePercent), int(minCoveragePercent)),
		Details:   fmt.Sprintf("test coverage %.1f%% (bar: %.1f%%)", impl.TestCoveragePercent, minCoveragePercent),
	}
	if !coverageResult.Passed {
		coverageResult.Recommendations = []string{"add test artifacts for uncovered source files"}
	}

	docsResult := types.ValidationResult{
		Criterion: "docs_meet_bar",
		Passed:    len(impl.Documentation) >= minDocumentationCount,
		Score:     boundedRatio(len(impl.Documentation), minDocumentationCount),
		Details:   fmt.Sprintf("%d documentation artifacts (bar: %d)", len(impl.Documentation), minDocumentationCount),
	}
	if !docsResult.Passed {
		docsResult.Recommendations = []string{"add documentation artifacts"}
	}

	var sum float64
	for _, c := range impl.ProductionReadinessChecks {
		sum += c.Score
	}
	avg := 0.0
	if len(impl.ProductionReadinessChecks) > 0 {
		avg = sum / float64(len(impl.ProductionReadinessChecks))
	}
	readinessResult := types.ValidationResult{
		Criterion: "readiness_average_meets_bar",
		Passed:    avg >= minReadinessAverage,
		Score:     boundedRatio(int(avg), int(minReadinessAverage)),
		Details:   fmt.Sprintf("average readiness score %.1f (bar: %.1f)", avg, minReadinessAverage),
	}
	if !readinessResult.Passed {
		readinessResult.Recommendations = []string{"address the lowest-scoring readiness check before release"}
	}

	return []types.ValidationResult{codeResult, coverageResult, docsResult, readinessResult}
}

// validateCompletionReadiness mirrors validate_completion's structured
// CompletionReadiness return shape (spec.md §4.4.5), derived from the same
// four checks validateCompletion produces.
func validateCompletionReadiness(impl types.Implementation) types.CompletionReadiness {
	results := validateCompletion(impl)
	readiness := types.CompletionReadiness{
		HasCodeArtifacts:         results[0].Passed,
		CoverageMeetsBar:         results[1].Passed,
		DocsMeetBar:              results[2].Passed,
		ReadinessAverageMeetsBar: results[3].Passed,
	}
	readiness.ReadyForProduction = allPassed(results)
	for _, r := range results {
		readiness.Details = append(readiness.Details, r.Criterion+": "+r.Details)
	}
	return readiness
}
