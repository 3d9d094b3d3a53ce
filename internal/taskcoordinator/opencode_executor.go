// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package taskcoordinator

import (
	"context"

	"swarmkernel/internal/agent"
)

// OpenCodeExecutor adapts an internal/agent.ClientInterface (the teacher's
// SDK wrapper over github.com/sst/opencode-sdk-go) to this package's
// AgentExecutor seam, so direct-routed tasks run through a real opencode
// server session instead of a stub.
type OpenCodeExecutor struct {
	client agent.ClientInterface
	model  string
}

// NewOpenCodeExecutor wraps an agent client for direct task execution.
// model may be empty to use the server's default.
func NewOpenCodeExecutor(client agent.ClientInterface, model string) *OpenCodeExecutor {
	return &OpenCodeExecutor{client: client, model: model}
}

// Execute runs one direct-routed task as an opencode prompt and folds the
// response's text/tool parts into an ExecutionResult.
func (e *OpenCodeExecutor) Execute(ctx context.Context, execCtx ExecutionContext) (ExecutionResult, error) {
	opts := &agent.PromptOptions{
		Model: e.model,
		Agent: execCtx.SubagentType,
	}
	result, err := e.client.ExecutePrompt(ctx, execCtx.Prompt, opts)
	if err != nil {
		return ExecutionResult{}, err
	}

	var tools []string
	for _, part := range result.GetToolResults() {
		tools = append(tools, part.ToolName)
	}

	return ExecutionResult{
		Success:   true,
		Output:    result.GetText(),
		ToolsUsed: tools,
	}, nil
}
