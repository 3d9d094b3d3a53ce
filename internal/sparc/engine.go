// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"swarmkernel/internal/idgen"
	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

const component = "sparc"

// Engine drives projects through the five canonical SPARC phases, one
// project at a time under its own lock (spec.md §5: per-project state is
// mutated only by the fiber executing a phase for that project).
type Engine struct {
	templates TemplateProvider

	mu       sync.RWMutex
	projects map[string]*types.SPARCProject
	specs    map[string]types.ProjectSpec
	locks    map[string]*sync.Mutex
}

// lockFor returns the per-project mutex, so concurrent operations on two
// different projects never block each other while a single project's
// phases still run one at a time (the same one-fiber-per-entity discipline
// internal/workflow's handle applies per workflow instance).
func (e *Engine) lockFor(projectID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[projectID] = l
	}
	return l
}

// New creates a SPARC engine. templates may be nil, in which case the
// specification phase builds requirements from the project spec alone.
func New(templates TemplateProvider) *Engine {
	return &Engine{
		templates: templates,
		projects:  make(map[string]*types.SPARCProject),
		specs:     make(map[string]types.ProjectSpec),
		locks:     make(map[string]*sync.Mutex),
	}
}

// CreateProject registers a new SPARC project and returns its initial
// (empty) state, all five phases marked not-started.
func (e *Engine) CreateProject(spec types.ProjectSpec) types.SPARCProject {
	project := &types.SPARCProject{
		ID:          idgen.New("proj"),
		Name:        spec.Name,
		Domain:      spec.Domain,
		Complexity:  spec.Complexity,
		PhaseStatus: make(map[types.SPARCPhase]*types.PhaseStatus, len(types.CanonicalPhaseOrder)),
		CreatedAt:   time.Now(),
	}
	for _, phase := range types.CanonicalPhaseOrder {
		project.PhaseStatus[phase] = &types.PhaseStatus{Status: types.PhaseNotStarted}
	}

	e.mu.Lock()
	e.projects[project.ID] = project
	e.specs[project.ID] = spec
	e.mu.Unlock()

	slog.Info("sparc project created", "component", component, "project_id", project.ID, "domain", spec.Domain)
	return *project
}

// GetProject returns a snapshot of a project's current state.
func (e *Engine) GetProject(projectID string) (types.SPARCProject, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	project, ok := e.projects[projectID]
	if !ok {
		return types.SPARCProject{}, false
	}
	return *project, true
}

// ListProjects returns a snapshot of every known project.
func (e *Engine) ListProjects() []types.SPARCProject {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.SPARCProject, 0, len(e.projects))
	for _, p := range e.projects {
		out = append(out, *p)
	}
	return out
}

// PhaseMetrics is the execute_phase wrapper's summary block (spec.md
// §4.4). Completeness and QualityScore are computed from the phase's own
// validation results rather than returned as the fixed 0.85/0.95/0.7
// placeholders spec.md's prose shows — an Open Question this engine
// resolves in favor of real numbers, per spec.md §9's direction that phase
// validators "must compute REAL completeness ratios, not the placeholder
// score".
type PhaseMetrics struct {
	DurationMin     float64
	QualityScore    float64
	Completeness    float64
	ComplexityScore float64
}

// PhaseExecutionResult is execute_phase's return value.
type PhaseExecutionResult struct {
	Phase           types.SPARCPhase
	Success         bool
	Deliverables    []string
	Metrics         PhaseMetrics
	NextPhase       *types.SPARCPhase
	Recommendations []string
}

// ExecutePhase runs one phase of a project's SPARC pipeline. Phases must be
// executed in canonical order; running a phase out of turn fails with
// PreconditionFailed (spec.md §4.4's cross-phase invariant).
func (e *Engine) ExecutePhase(ctx context.Context, projectID string, phase types.SPARCPhase) (PhaseExecutionResult, error) {
	e.mu.Lock()
	project, ok := e.projects[projectID]
	spec := e.specs[projectID]
	e.mu.Unlock()
	if !ok {
		return PhaseExecutionResult{}, kernelerrors.New(kernelerrors.KindNotFound, component, "no such project: "+projectID)
	}

	lock := e.lockFor(projectID)
	lock.Lock()
	defer lock.Unlock()

	if err := requirePhaseInOrder(project, phase); err != nil {
		return PhaseExecutionResult{}, err
	}

	status := project.PhaseStatus[phase]
	status.Status = types.PhaseInProgress
	status.StartedAt = time.Now()
	project.CurrentPhase = phase

	deliverables, validations, complexity, err := e.runPhase(project, spec, phase)

	status.CompletedAt = time.Now()
	status.DurationMin = status.CompletedAt.Sub(status.StartedAt).Minutes()
	status.ValidationResults = validations
	status.Deliverables = deliverables

	if err != nil {
		status.Status = types.PhaseFailed
		status.ValidationResults = []types.ValidationResult{{
			Criterion: "phase_execution",
			Passed:    false,
			Details:   err.Error(),
		}}
		slog.Error("sparc phase failed", "component", component, "project_id", projectID, "phase", phase, "error", err)
		return PhaseExecutionResult{}, err
	}

	status.Status = types.PhaseDone
	project.CompletedPhases = append(project.CompletedPhases, phase)
	project.OverallProgress = float64(len(project.CompletedPhases)) / float64(len(types.CanonicalPhaseOrder))

	result := PhaseExecutionResult{
		Phase:        phase,
		Success:      true,
		Deliverables: deliverables,
		Metrics: PhaseMetrics{
			DurationMin:     status.DurationMin,
			QualityScore:    passRate(validations),
			Completeness:    overallScore(validations),
			ComplexityScore: complexity,
		},
		NextPhase:       nextPhaseAfter(phase),
		Recommendations: collectRecommendations(validations),
	}
	slog.Info("sparc phase completed", "component", component, "project_id", projectID, "phase", phase,
		"completeness", result.Metrics.Completeness, "duration_min", result.Metrics.DurationMin)
	return result, nil
}

// runPhase invokes the phase-specific generator and validator and mutates
// the project's deliverable field. Returns deliverable names for the phase
// status record.
func (e *Engine) runPhase(project *types.SPARCProject, spec types.ProjectSpec, phase types.SPARCPhase) ([]string, []types.ValidationResult, float64, error) {
	switch phase {
	case types.PhaseSpecification:
		result := generateSpecification(spec, e.templates)
		project.Specification = &result
		validations := validateSpecification(result)
		complexity := boundedRatio(len(result.FunctionalRequirements)+len(result.NonFunctionalRequirements), 10)
		return []string{"specification"}, validations, complexity, nil

	case types.PhasePseudocode:
		if project.Specification == nil {
			return nil, nil, 0, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "pseudocode phase requires a completed specification")
		}
		result := generatePseudocode(*project.Specification)
		project.Pseudocode = &result
		validations := validatePseudocode(result)
		complexity := boundedRatio(len(result.Algorithms), 5)
		return []string{"pseudocode"}, validations, complexity, nil

	case types.PhaseArchitecture:
		if project.Pseudocode == nil {
			return nil, nil, 0, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "architecture phase requires completed pseudocode")
		}
		result, err := generateArchitecture(*project.Pseudocode)
		if err != nil {
			return nil, nil, 0, err
		}
		project.Architecture = &result
		validations := validateArchitecture(result)
		complexity := boundedRatio(len(result.Components), 8)
		return []string{"architecture"}, validations, complexity, nil

	case types.PhaseRefinement:
		if project.Architecture == nil {
			return nil, nil, 0, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "refinement phase requires a completed architecture")
		}
		result := generateRefinement(*project.Architecture, types.RefinementFeedback{})
		project.Refinements = append(project.Refinements, &result)
		validations := validateRefinement(result)
		complexity := boundedRatio(len(result.OptimizationStrategies), 12)
		return []string{"refinement"}, validations, complexity, nil

	case types.PhaseCompletion:
		if len(project.Refinements) == 0 {
			return nil, nil, 0, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "completion phase requires at least one refinement iteration")
		}
		arch := currentArchitecture(project)
		result := generateImplementation(*arch)
		project.Implementation = &result
		validations := validateCompletion(result)
		complexity := boundedRatio(len(result.SourceCode), 20)
		return []string{"implementation"}, validations, complexity, nil

	default:
		return nil, nil, 0, kernelerrors.New(kernelerrors.KindValidationFailed, component, "unknown phase: "+string(phase))
	}
}

// RefineImplementation runs an additional refinement iteration against
// real, classified feedback, appending a new Refinement record without
// re-entering the phase state machine (spec.md §4.4's invariant that
// deliverables are immutable within a terminal phase; further change is a
// new refinement iteration, not a mutation of the existing one).
func (e *Engine) RefineImplementation(projectID string, feedbackLines []string) (types.Refinement, error) {
	e.mu.RLock()
	project, ok := e.projects[projectID]
	e.mu.RUnlock()
	if !ok {
		return types.Refinement{}, kernelerrors.New(kernelerrors.KindNotFound, component, "no such project: "+projectID)
	}

	lock := e.lockFor(projectID)
	lock.Lock()
	defer lock.Unlock()

	if project.Architecture == nil {
		return types.Refinement{}, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "cannot refine before the architecture phase completes")
	}

	feedback := classifyFeedback(feedbackLines)
	arch := currentArchitecture(project)
	result := generateRefinement(*arch, feedback)
	project.Refinements = append(project.Refinements, &result)
	return result, nil
}

// ValidateCompletion reports the structured production-readiness verdict
// for a project's implementation (spec.md §4.4.5's validate_completion
// operation).
func (e *Engine) ValidateCompletion(projectID string) (types.CompletionReadiness, error) {
	e.mu.RLock()
	project, ok := e.projects[projectID]
	e.mu.RUnlock()
	if !ok {
		return types.CompletionReadiness{}, kernelerrors.New(kernelerrors.KindNotFound, component, "no such project: "+projectID)
	}
	if project.Implementation == nil {
		return types.CompletionReadiness{}, kernelerrors.New(kernelerrors.KindPreconditionFail, component, "completion phase has not produced an implementation yet")
	}
	return validateCompletionReadiness(*project.Implementation), nil
}

func currentArchitecture(project *types.SPARCProject) *types.Architecture {
	if len(project.Refinements) > 0 {
		last := project.Refinements[len(project.Refinements)-1]
		if last.RefinedArchitecture != nil {
			return last.RefinedArchitecture
		}
	}
	return project.Architecture
}

func requirePhaseInOrder(project *types.SPARCProject, phase types.SPARCPhase) error {
	expectedIndex := len(project.CompletedPhases)
	if expectedIndex >= len(types.CanonicalPhaseOrder) {
		return kernelerrors.New(kernelerrors.KindPreconditionFail, component, "all phases already completed for project "+project.ID)
	}
	expected := types.CanonicalPhaseOrder[expectedIndex]
	if phase != expected {
		return kernelerrors.New(kernelerrors.KindPreconditionFail, component,
			fmt.Sprintf("phase %s cannot run before %s completes", phase, expected))
	}
	return nil
}

func nextPhaseAfter(phase types.SPARCPhase) *types.SPARCPhase {
	for i, p := range types.CanonicalPhaseOrder {
		if p == phase && i+1 < len(types.CanonicalPhaseOrder) {
			next := types.CanonicalPhaseOrder[i+1]
			return &next
		}
	}
	return nil
}

func passRate(results []types.ValidationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var passed int
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(results))
}

func collectRecommendations(results []types.ValidationResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Recommendations...)
	}
	return out
}
