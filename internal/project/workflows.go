// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package project

import "swarmkernel/pkg/types"

// DefaultDocumentWorkflowDefinitions returns one single-step workflow
// definition per named document-pipeline stage, each using the Workflow
// Engine's built-in "log" step handler. A composition root registers these
// against the engine before any Coordinator fires StartWorkflow by name;
// the registration is separate from this package so internal/project never
// needs to import internal/workflow directly.
func DefaultDocumentWorkflowDefinitions() []types.WorkflowDefinition {
	defs := make([]types.WorkflowDefinition, 0, len(documentWorkflowStages))
	for _, stage := range documentWorkflowStages {
		defs = append(defs, types.WorkflowDefinition{
			Name:        stage,
			Description: "records the " + stage + " document derivation step",
			Version:     "1.0.0",
			Steps: []types.StepDefinition{
				{
					Type: "log",
					Name: stage,
					Params: map[string]any{
						"message": stage + " completed",
					},
				},
			},
		})
	}
	return defs
}
