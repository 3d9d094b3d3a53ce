// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package taskcoordinator

import "swarmkernel/pkg/types"

// canonicalSubagentAliases maps a requested subagent_type onto the closed
// set of canonical sub-agent names the kernel knows how to brief (spec.md
// §4.3: "Optionally map to a canonical sub-agent alias (closed mapping
// table)"). A type absent from the table is used as-is.
var canonicalSubagentAliases = map[string]string{
	"coder":      "code-review-swarm",
	"debugger":   "debug",
	"architect":  "system-architect",
	"analyst":    "ai-ml-specialist",
	"researcher": "researcher",
	"tester":     "tester",
}

// specializedSubagentTypes is the closed set that always counts as
// "specialized" for the optimality decision below.
var specializedSubagentTypes = map[string]struct{}{
	"code-review-swarm": {},
	"debug":              {},
	"ai-ml-specialist":   {},
	"database-architect": {},
	"system-architect":   {},
	"security-analyzer":  {},
}

// resolveSubagentType applies the canonical alias mapping, falling back to
// the requested type unchanged.
func resolveSubagentType(requested string) string {
	if alias, ok := canonicalSubagentAliases[requested]; ok {
		return alias
	}
	return requested
}

// isOptimalSpecialization decides whether the specialized sub-agent variant
// is "optimal" for this task (spec.md §4.3): high/critical priority, OR
// dependency count > 2, OR the resolved subagent type is in the
// specialized set.
func isOptimalSpecialization(req TaskRequest, resolvedType string) bool {
	if req.Priority == types.PriorityHigh || req.Priority == types.PriorityCritical {
		return true
	}
	if len(req.Dependencies) > 2 {
		return true
	}
	_, specialized := specializedSubagentTypes[resolvedType]
	return specialized
}

// buildExecutionContext assembles the prompt + structured context an
// AgentExecutor runs under, grounded in the teacher's internal/prompts
// request-building idiom (task description + context map + system prompt).
func buildExecutionContext(req TaskRequest, resolvedType string, optimal bool) ExecutionContext {
	systemPrompt := "You are a " + resolvedType + " agent."
	if optimal {
		systemPrompt += " Apply specialized domain expertise for this task."
	}

	domainContext := map[string]string{
		"task_id":       req.ID,
		"priority":      string(req.Priority),
		"subagent_type": resolvedType,
	}
	if req.SourceDocument != nil {
		domainContext["technical_approach"] = req.SourceDocument.TechnicalApproach
	}

	return ExecutionContext{
		Prompt:         req.Description,
		DomainContext:  domainContext,
		ExpectedOutput: "a completed task result",
		SystemPrompt:   systemPrompt,
		SubagentType:   resolvedType,
	}
}
