// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package project

import (
	"context"
	"testing"

	"swarmkernel/pkg/types"
)

type stubSPARCDriver struct {
	created types.ProjectSpec
}

func (s *stubSPARCDriver) CreateProject(spec types.ProjectSpec) types.SPARCProject {
	s.created = spec
	return types.SPARCProject{ID: "proj-1", Domain: spec.Domain}
}

type stubWorkflowStarter struct {
	started []string
}

func (s *stubWorkflowStarter) StartWorkflow(defOrName any, workflowCtx map[string]any) (string, error) {
	name, _ := defOrName.(string)
	s.started = append(s.started, name)
	return "wf-" + name, nil
}

func TestInitializeProjectDerivesDocumentChainAndFiresWorkflows(t *testing.T) {
	sparc := &stubSPARCDriver{}
	workflows := &stubWorkflowStarter{}
	c := New(sparc, workflows, nil)

	spec := types.ProjectSpec{
		Name:         "swarm-dash",
		Domain:       types.DomainSwarmCoordination,
		Complexity:   types.ComplexityModerate,
		Requirements: []string{"dispatch tasks to agents", "track agent health"},
	}

	sparcProject, docs, err := c.InitializeProject(context.Background(), spec)
	if err != nil {
		t.Fatalf("InitializeProject failed: %v", err)
	}
	if sparcProject.ID != "proj-1" {
		t.Fatalf("expected the SPARC driver's project id to be returned, got %s", sparcProject.ID)
	}

	var visionCount, prdCount, epicCount, featureCount int
	for _, d := range docs {
		switch d.Header.Kind {
		case types.DocVision:
			visionCount++
		case types.DocPRD:
			prdCount++
		case types.DocEpic:
			epicCount++
		case types.DocFeature:
			featureCount++
		}
	}
	if visionCount != 1 || prdCount != 1 || epicCount != 1 || featureCount != 1 {
		t.Errorf("expected one document of each kind in the chain, got vision=%d prd=%d epic=%d feature=%d",
			visionCount, prdCount, epicCount, featureCount)
	}

	if len(workflows.started) != len(documentWorkflowStages) {
		t.Fatalf("expected %d document workflows fired, got %d", len(documentWorkflowStages), len(workflows.started))
	}
	for i, stage := range documentWorkflowStages {
		if workflows.started[i] != stage {
			t.Errorf("expected workflow stage %d to be %s, got %s", i, stage, workflows.started[i])
		}
	}

	stored := c.Documents(sparcProject.ID)
	if len(stored) != len(docs) {
		t.Errorf("expected Documents to return the same set InitializeProject returned, got %d vs %d", len(stored), len(docs))
	}
}

func TestGeneratePhaseTaskChainsDependenciesAndAgentType(t *testing.T) {
	c := New(&stubSPARCDriver{}, nil, nil)

	specTask := c.GeneratePhaseTask("proj-1", types.PhaseSpecification, "")
	if specTask.Task == nil || specTask.Task.OptimalAgentType != "system-analyst" {
		t.Fatalf("expected specification phase task to target system-analyst, got %+v", specTask.Task)
	}
	if len(specTask.Task.Dependencies) != 0 {
		t.Errorf("expected no dependencies for the first phase task, got %v", specTask.Task.Dependencies)
	}

	pseudoTask := c.GeneratePhaseTask("proj-1", types.PhasePseudocode, specTask.Header.ID)
	if pseudoTask.Task.OptimalAgentType != "algorithm-designer" {
		t.Errorf("expected pseudocode phase task to target algorithm-designer, got %s", pseudoTask.Task.OptimalAgentType)
	}
	if len(pseudoTask.Task.Dependencies) != 1 || pseudoTask.Task.Dependencies[0] != specTask.Header.ID {
		t.Errorf("expected pseudocode task to depend on the specification task, got %v", pseudoTask.Task.Dependencies)
	}

	stored := c.Documents("proj-1")
	if len(stored) != 2 {
		t.Fatalf("expected both generated task documents recorded, got %d", len(stored))
	}
}

func TestDeriveADRsOneRecordPerPattern(t *testing.T) {
	c := New(&stubSPARCDriver{}, nil, nil)
	arch := types.Architecture{
		ArchitecturalPatterns: []string{"Layered", "Event-Driven"},
		Components:            []types.ArchComponent{{Name: "DispatchTaskService"}},
	}

	adrs := c.DeriveADRs("proj-1", arch)
	if len(adrs) != 2 {
		t.Fatalf("expected one ADR per pattern, got %d", len(adrs))
	}
	for _, adr := range adrs {
		if adr.ADR == nil || adr.ADR.Status != "accepted" {
			t.Errorf("expected every derived ADR to be accepted, got %+v", adr.ADR)
		}
	}

	stored := c.Documents("proj-1")
	if len(stored) != 2 {
		t.Errorf("expected ADRs appended to the project's document set, got %d", len(stored))
	}
}
