// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

import "time"

// WorkflowStatus is the lifecycle status of a running workflow instance.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowPaused    WorkflowStatus = "paused"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
	WorkflowCancelled WorkflowStatus = "cancelled"
)

// GateConfig describes an approval checkpoint attached to a step.
type GateConfig struct {
	Type           string
	BusinessImpact string
	Stakeholders   []string
	AutoApproval   bool
	TimeoutMs      int64
}

// StepDefinition is one entry in a workflow definition's ordered step list.
type StepDefinition struct {
	Type       string
	Name       string
	Params     map[string]any
	TimeoutMs  int64
	GateConfig *GateConfig
}

// WorkflowDefinition is a named, versioned, ordered list of steps.
type WorkflowDefinition struct {
	Name        string
	Description string
	Version     string
	Steps       []StepDefinition
}

// PausedForGate records the suspension point a paused workflow is waiting on.
type PausedForGate struct {
	StepIndex int
	GateID    string
	PausedAt  time.Time
}

// GateRequest is constructed by the engine for each gated step.
type GateRequest struct {
	GateID         string
	StepIndex      int
	WorkflowID     string
	WorkflowCtx    map[string]any
	BusinessImpact string
	Stakeholders   []string
	TimeoutMs      int64
	AutoApproval   bool
}

// GateResult records the decision made for a GateRequest.
type GateResult struct {
	GateID     string
	Approved   bool
	Reason     string
	DecidedAt  time.Time
	AutoApplied bool
}

// WorkflowInstance is one running (or completed) execution of a definition.
type WorkflowInstance struct {
	ID            string
	Definition    WorkflowDefinition
	Status        WorkflowStatus
	Context       map[string]any
	CurrentStep   int
	StepResults   map[int]any
	StartTime     time.Time
	EndTime       time.Time
	Error         string

	PausedForGate *PausedForGate
	PendingGates  map[string]*GateRequest
	GateResults   map[string]*GateResult
}

// SPARCPhase is one of the five canonical SPARC phases, in pipeline order.
type SPARCPhase string

const (
	PhaseSpecification SPARCPhase = "specification"
	PhasePseudocode     SPARCPhase = "pseudocode"
	PhaseArchitecture   SPARCPhase = "architecture"
	PhaseRefinement     SPARCPhase = "refinement"
	PhaseCompletion     SPARCPhase = "completion"
)

// CanonicalPhaseOrder is the fixed specification -> ... -> completion chain.
var CanonicalPhaseOrder = []SPARCPhase{
	PhaseSpecification,
	PhasePseudocode,
	PhaseArchitecture,
	PhaseRefinement,
	PhaseCompletion,
}

// PhaseRunStatus is the lifecycle status of a single phase's execution.
type PhaseRunStatus string

const (
	PhaseNotStarted PhaseRunStatus = "not-started"
	PhaseInProgress PhaseRunStatus = "in-progress"
	PhaseDone       PhaseRunStatus = "completed"
	PhaseFailed     PhaseRunStatus = "failed"
)

// ValidationResult is the outcome of validating one phase-completeness
// criterion.
type ValidationResult struct {
	Criterion       string
	Passed          bool
	Score           float64
	Details         string
	Recommendations []string
}

// PhaseStatus tracks one phase's run within a SPARC project.
type PhaseStatus struct {
	Status            PhaseRunStatus
	StartedAt         time.Time
	CompletedAt       time.Time
	DurationMin       float64
	Deliverables      []string
	ValidationResults []ValidationResult
}

// ProjectDomain is the closed set of SPARC project domains.
type ProjectDomain string

const (
	DomainSwarmCoordination ProjectDomain = "swarm-coordination"
	DomainNeuralNetworks    ProjectDomain = "neural-networks"
	DomainMemorySystems     ProjectDomain = "memory-systems"
	DomainRestAPI           ProjectDomain = "rest-api"
	DomainWasmIntegration   ProjectDomain = "wasm-integration"
	DomainInterfaces        ProjectDomain = "interfaces"
	DomainGeneral           ProjectDomain = "general"
)

// Complexity is the closed set of project complexity tiers used by the
// template registry's compatibility scoring.
type Complexity string

const (
	ComplexitySimple     Complexity = "simple"
	ComplexityModerate   Complexity = "moderate"
	ComplexityHigh       Complexity = "high"
	ComplexityComplex    Complexity = "complex"
	ComplexityEnterprise Complexity = "enterprise"
)

// ProjectSpec is the input describing a project to be created or matched
// against templates.
type ProjectSpec struct {
	Name         string
	Domain       ProjectDomain
	Complexity   Complexity
	Requirements []string
	Constraints  []string
}

// SPARCProject tracks one project's progress through the five phases.
type SPARCProject struct {
	ID          string
	Name        string
	Domain      ProjectDomain
	Complexity  Complexity
	CurrentPhase SPARCPhase

	Specification *Specification
	Pseudocode    *Pseudocode
	Architecture  *Architecture
	Refinements   []*Refinement
	Implementation *Implementation

	CompletedPhases []SPARCPhase
	PhaseStatus     map[SPARCPhase]*PhaseStatus
	OverallProgress float64

	CreatedAt time.Time
}
