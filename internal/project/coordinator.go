// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package project implements the Project Coordinator (spec.md §4.6): it
// creates a SPARC project, derives PRD/epic/feature documents from the
// vision (firing the matching document workflows on the Workflow Engine as
// a record), derives ADR records once the
// architecture phase completes, and generates one task document per SPARC
// phase with estimated effort, a dependency on the prior phase's task, and
// an optimal-agent-type hint.
//
// Grounded in the teacher's pkg/coordinator.Coordinator (config-driven
// constructor, a Status-style snapshot accessor, log/slog throughout) and
// internal/planner.BeadsCreator (prefixed random id generation, a plan
// summary over an ordered task list), adapted from Beads-issue creation to
// document-record creation.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"swarmkernel/internal/idgen"
	"swarmkernel/pkg/kvstore"
	"swarmkernel/pkg/types"
)

const component = "project"

// documentWorkflowStages are the named document-pipeline workflows the
// Project Coordinator fires on project initialization (spec.md §4.6).
var documentWorkflowStages = []string{
	"vision-to-prds",
	"prd-to-epics",
	"epic-to-features",
	"feature-to-tasks",
}

// phaseAgentType is the fixed phase -> optimal-agent-type mapping spec.md
// §4.6 names.
var phaseAgentType = map[types.SPARCPhase]string{
	types.PhaseSpecification: "system-analyst",
	types.PhasePseudocode:    "algorithm-designer",
	types.PhaseArchitecture:  "system-architect",
	types.PhaseRefinement:    "performance-optimizer",
	types.PhaseCompletion:    "full-stack-developer",
}

var phaseEffort = map[types.SPARCPhase]string{
	types.PhaseSpecification: "2d",
	types.PhasePseudocode:    "3d",
	types.PhaseArchitecture:  "5d",
	types.PhaseRefinement:    "4d",
	types.PhaseCompletion:    "8d",
}

// SPARCDriver is the narrow view of internal/sparc.Engine this package
// needs: creating a project. Kept as an interface so tests can stub it
// without depending on a live SPARC engine.
type SPARCDriver interface {
	CreateProject(spec types.ProjectSpec) types.SPARCProject
}

// WorkflowStarter is the narrow view of internal/workflow.Engine this
// package needs to fire the named document-pipeline workflows.
type WorkflowStarter interface {
	StartWorkflow(defOrName any, workflowCtx map[string]any) (string, error)
}

// Coordinator drives project initialization and per-phase document
// generation. kv may be nil (documents are then kept in memory only).
type Coordinator struct {
	sparc     SPARCDriver
	workflows WorkflowStarter
	kv        kvstore.Store

	mu        sync.Mutex
	documents map[string][]types.Document // keyed by SPARC project id
}

// New creates a Project Coordinator. workflows and kv may both be nil.
func New(sparc SPARCDriver, workflows WorkflowStarter, kv kvstore.Store) *Coordinator {
	return &Coordinator{
		sparc:     sparc,
		workflows: workflows,
		kv:        kv,
		documents: make(map[string][]types.Document),
	}
}

// InitializeProject creates a SPARC project, derives the vision/PRD/epic/
// feature document chain, persists it, and fires the four named document
// workflows through the Workflow Engine as an auditable record of the
// fan-out (spec.md §4.6). Document derivation itself runs synchronously so
// callers get a complete, deterministic document set back immediately;
// the workflow instances are an observability side channel, not the
// generation path itself — a decision recorded in DESIGN.md.
func (c *Coordinator) InitializeProject(ctx context.Context, spec types.ProjectSpec) (types.SPARCProject, []types.Document, error) {
	sparcProject := c.sparc.CreateProject(spec)
	now := time.Now()

	vision := types.NewVisionDocument(idgen.New("doc"), spec.Name+" vision", visionSummary(spec), spec.Requirements, now)
	docs := []types.Document{vision}

	prds := derivePRDs(vision)
	docs = append(docs, prds...)
	epics := deriveEpics(prds, now)
	docs = append(docs, epics...)
	features := deriveFeatures(epics, now)
	docs = append(docs, features...)

	c.mu.Lock()
	c.documents[sparcProject.ID] = docs
	c.mu.Unlock()

	if c.kv != nil {
		for _, doc := range docs {
			if _, err := c.kv.Store(ctx, doc.Header.ID, doc, "documents"); err != nil {
				slog.Error("failed to persist document", "component", component, "document_id", doc.Header.ID, "error", err)
			}
		}
	}

	if c.workflows != nil {
		for _, stage := range documentWorkflowStages {
			if _, err := c.workflows.StartWorkflow(stage, map[string]any{
				"project_id":     sparcProject.ID,
				"document_count": len(docs),
			}); err != nil {
				slog.Warn("document pipeline workflow did not start", "component", component, "stage", stage, "error", err)
			}
		}
	}

	slog.Info("project initialized", "component", component, "project_id", sparcProject.ID, "documents", len(docs))
	return sparcProject, docs, nil
}

// GeneratePhaseTask creates a task document for a SPARC phase, depending on
// the prior phase's task id if one is given, and appends it to the
// project's document set (spec.md §4.6's per-phase task generation).
func (c *Coordinator) GeneratePhaseTask(projectID string, phase types.SPARCPhase, priorTaskID string) types.Document {
	var deps []string
	if priorTaskID != "" {
		deps = []string{priorTaskID}
	}
	payload := types.TaskPayload{
		PhaseName:        string(phase),
		EstimatedEffort:  phaseEffort[phase],
		Dependencies:     deps,
		OptimalAgentType: phaseAgentType[phase],
	}
	doc := types.NewTaskDocument(idgen.New("task-doc"), string(phase)+" implementation task", payload, time.Now())

	c.mu.Lock()
	c.documents[projectID] = append(c.documents[projectID], doc)
	c.mu.Unlock()
	return doc
}

// DeriveADRs records one ADR per architectural pattern chosen during the
// architecture phase (spec.md §4.6: "on architecture phase completion:
// derive ADR records from the architecture's decisions").
func (c *Coordinator) DeriveADRs(projectID string, arch types.Architecture) []types.Document {
	docs := make([]types.Document, 0, len(arch.ArchitecturalPatterns))
	for _, pattern := range arch.ArchitecturalPatterns {
		adr := types.NewADRDocument(idgen.New("adr"), "Adopt the "+pattern+" pattern", types.ADRPayload{
			Decision:     "adopt the " + pattern + " architectural pattern",
			Context:      fmt.Sprintf("the architecture phase produced %d components and %d relationships", len(arch.Components), len(arch.Relationships)),
			Consequences: []string{"new components must conform to the " + pattern + " pattern's structure"},
			Status:       "accepted",
		}, time.Now())
		docs = append(docs, adr)
	}

	c.mu.Lock()
	c.documents[projectID] = append(c.documents[projectID], docs...)
	c.mu.Unlock()
	return docs
}

// Documents returns a copy of every document recorded for a project.
func (c *Coordinator) Documents(projectID string) []types.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Document, len(c.documents[projectID]))
	copy(out, c.documents[projectID])
	return out
}

func visionSummary(spec types.ProjectSpec) string {
	return fmt.Sprintf("%s is a %s-domain project targeting %s complexity", spec.Name, spec.Domain, spec.Complexity)
}

func derivePRDs(vision types.Document) []types.Document {
	if vision.Vision == nil || len(vision.Vision.Goals) == 0 {
		return nil
	}
	return []types.Document{types.NewPRDDocument(idgen.New("prd"), "product requirements", vision.Vision.Goals, time.Now())}
}

func deriveEpics(prds []types.Document, now time.Time) []types.Document {
	var epics []types.Document
	for _, prd := range prds {
		if prd.PRD == nil {
			continue
		}
		epic := types.NewEpicDocument(idgen.New("epic"), "epic for "+prd.Header.Title, nil, now)
		epics = append(epics, epic)
	}
	return epics
}

func deriveFeatures(epics []types.Document, now time.Time) []types.Document {
	var features []types.Document
	for _, epic := range epics {
		feature := types.NewFeatureDocument(idgen.New("feature"), "feature for "+epic.Header.Title, epic.Header.ID,
			"derived from "+epic.Header.Title, now)
		features = append(features, feature)
	}
	return features
}
