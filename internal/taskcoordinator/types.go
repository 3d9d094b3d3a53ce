// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package taskcoordinator implements the Task Coordinator (spec.md §4.3):
// routes a logical task either directly (Swarm Coordinator assigns one
// agent) or through the SPARC pipeline, and records outcomes. The request/
// execution-context shape is grounded in the teacher's internal/prompts
// package (PromptRequest/ReviewRequest: a task description plus structured
// context fields feeding a system-prompt builder), generalized from
// TDD-cycle prompt construction to the spec's direct/SPARC dispatch.
package taskcoordinator

import (
	"context"
	"time"

	"swarmkernel/pkg/types"
)

// SourceDocument carries upstream planning detail a caller may attach to a
// task; its shape is consulted by the SPARC routing heuristic.
type SourceDocument struct {
	AcceptanceCriteria []string
	Tags               []string
	TechnicalApproach  string
}

// TaskRequest is the logical unit of work the coordinator routes.
type TaskRequest struct {
	ID                 string
	Description        string
	Priority           types.Priority
	SubagentType       string
	UseSparcMethodology bool
	SourceDocument     *SourceDocument
	Dependencies       []string
	TimeoutMinutes     int
}

func (r TaskRequest) timeout() time.Duration {
	minutes := r.TimeoutMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}

// MethodologyApplied records which path a task took.
type MethodologyApplied string

const (
	MethodologyDirect MethodologyApplied = "direct"
	MethodologySPARC  MethodologyApplied = "sparc"
)

// Outcome is the recorded result of routing and running one TaskRequest.
type Outcome struct {
	TaskID              string
	Success             bool
	Output              string
	AgentUsed           string
	ExecutionTimeMs     float64
	ToolsUsed           []string
	MethodologyApplied  MethodologyApplied
	ArtifactsByPhase    map[types.SPARCPhase][]string
	Error               string
	RecordedAt          time.Time
}

// ExecutionContext is what gets handed to an AgentExecutor for direct
// execution: a prompt plus structured context, mirroring the teacher's
// PromptRequest shape (TaskDescription + Context map + derived system
// prompt) generalized beyond TDD-cycle requests.
type ExecutionContext struct {
	Prompt           string
	DomainContext    map[string]string
	ExpectedOutput   string
	SystemPrompt     string
	SubagentType     string
}

// AgentExecutor runs one execution context under a deadline and reports the
// outcome. Grounded in the teacher's internal/opencode.AgentExecutor
// (ctx, task) -> (result, error) shape; generalized from the teacher's
// TDD-cycle CompleteTask to a single prompt-execution call since the SPARC
// pipeline, not this interface, owns multi-step structure.
type AgentExecutor interface {
	Execute(ctx context.Context, execCtx ExecutionContext) (ExecutionResult, error)
}

// ExecutionResult is what an AgentExecutor reports back.
type ExecutionResult struct {
	Success   bool
	Output    string
	ToolsUsed []string
}
