// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"swarmkernel/internal/agent"
	"swarmkernel/internal/config"
	"swarmkernel/internal/project"
	"swarmkernel/internal/registry"
	"swarmkernel/internal/sparc"
	"swarmkernel/internal/swarm"
	"swarmkernel/internal/taskcoordinator"
	"swarmkernel/internal/template"
	"swarmkernel/internal/workflow"
	"swarmkernel/pkg/kvstore"
	"swarmkernel/pkg/types"
)

const version = "0.1.0"

// unconfiguredExecutor is the default AgentExecutor when no opencode server
// is configured via OPENCODE_BASE_URL: direct-routed tasks then fail with a
// clear error rather than the kernel reaching for a nil executor.
type unconfiguredExecutor struct{}

func (unconfiguredExecutor) Execute(context.Context, taskcoordinator.ExecutionContext) (taskcoordinator.ExecutionResult, error) {
	return taskcoordinator.ExecutionResult{}, fmt.Errorf("no opencode server configured: set OPENCODE_BASE_URL to route tasks directly")
}

// kernel wires every component of the multi-agent orchestration
// coordination kernel: Agent Registry, Swarm Coordinator, Workflow Engine,
// Task Coordinator, SPARC Phase Engine, Template Registry, and Project
// Coordinator. Mirrors the teacher's cmd/open-swarm wiring of a single
// pkg/coordinator.Coordinator, generalized to this kernel's larger
// component graph.
type kernel struct {
	cfg       *config.Config
	kv        kvstore.Store
	registry  *registry.Registry
	swarm     *swarm.Coordinator
	templates *template.Registry
	sparc     *sparc.Engine
	tasks     *taskcoordinator.Coordinator
	workflows *workflow.Engine
	projects  *project.Coordinator
}

func newKernel(cfg *config.Config) *kernel {
	var kv kvstore.Store
	if cfg.Kernel.PersistWorkflows && cfg.Kernel.PersistencePath != "" {
		store, err := kvstore.NewJSONFileStore(cfg.Kernel.PersistencePath)
		if err != nil {
			slog.Warn("falling back to in-memory store", "component", "main", "error", err)
			kv = kvstore.NewMemoryStore()
		} else {
			kv = store
		}
	} else {
		kv = kvstore.NewMemoryStore()
	}

	reg := registry.New()
	swarmCoord := swarm.New(reg)
	templates := template.New()
	sparcEngine := sparc.New(template.NewSpecSeeder(templates))

	handlers := workflow.NewHandlerRegistry()
	wfEngine := workflow.New(workflow.Config{
		MaxConcurrent:    cfg.Kernel.MaxConcurrent,
		StepTimeoutMs:    cfg.Kernel.StepTimeoutMs,
		PersistWorkflows: cfg.Kernel.PersistWorkflows,
		PersistencePath:  cfg.Kernel.PersistencePath,
		RetryAttempts:    cfg.Kernel.RetryAttempts,
	}, handlers, nil)
	for _, def := range project.DefaultDocumentWorkflowDefinitions() {
		wfEngine.RegisterDefinition(def)
	}

	var executor taskcoordinator.AgentExecutor = unconfiguredExecutor{}
	if baseURL := os.Getenv("OPENCODE_BASE_URL"); baseURL != "" {
		executor = taskcoordinator.NewOpenCodeExecutor(agent.NewClient(baseURL, 0), os.Getenv("OPENCODE_MODEL"))
	}
	taskCoord := taskcoordinator.New(reg, executor, sparc.NewProjectRunner(sparcEngine))
	projectCoord := project.New(sparcEngine, wfEngine, kv)

	return &kernel{
		cfg:       cfg,
		kv:        kv,
		registry:  reg,
		swarm:     swarmCoord,
		templates: templates,
		sparc:     sparcEngine,
		tasks:     taskCoord,
		workflows: wfEngine,
		projects:  projectCoord,
	}
}

func main() {
	fmt.Printf("swarm-kernel v%s - multi-agent orchestration coordination kernel\n", version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("no project configuration found, using defaults", "error", err)
		cfg = &config.Config{}
	}

	k := newKernel(cfg)

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	ctx := context.Background()
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create_project":
		k.handleCreateProject(args)
	case "execute_phase":
		k.handleExecutePhase(ctx, args)
	case "get_project_status":
		k.handleGetProjectStatus(args)
	case "list_projects":
		k.handleListProjects()
	case "refine_implementation":
		k.handleRefineImplementation(args)
	case "validate_completion":
		k.handleValidateCompletion(args)
	case "apply_template":
		k.handleApplyTemplate(args)
	case "register_agent":
		k.handleRegisterAgent(args)
	case "remove_agent":
		k.handleRemoveAgent(args)
	case "list_agents":
		k.handleListAgents()
	case "coordinate_swarm":
		k.handleCoordinateSwarm(ctx, args)
	case "start_workflow":
		k.handleStartWorkflow(args)
	case "route_task":
		k.handleRouteTask(ctx, args)
	case "version":
		fmt.Printf("swarm-kernel version %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
	}
}

func (k *kernel) handleCreateProject(args []string) {
	fs := flag.NewFlagSet("create_project", flag.ExitOnError)
	name := fs.String("name", "", "project name")
	domain := fs.String("domain", string(types.DomainGeneral), "project domain")
	complexity := fs.String("complexity", string(types.ComplexityModerate), "project complexity")
	requirement := fs.String("requirement", "", "a requirement line (repeatable by re-invoking)")
	_ = fs.Parse(args)

	spec := types.ProjectSpec{
		Name:       *name,
		Domain:     types.ProjectDomain(*domain),
		Complexity: types.Complexity(*complexity),
	}
	if *requirement != "" {
		spec.Requirements = []string{*requirement}
	}

	sparcProject, docs, err := k.projects.InitializeProject(context.Background(), spec)
	if err != nil {
		log.Fatalf("create_project failed: %v", err)
	}
	printJSON(map[string]any{"project": sparcProject, "documents": len(docs)})
}

func (k *kernel) handleExecutePhase(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("execute_phase", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	phase := fs.String("phase", "", "phase name")
	_ = fs.Parse(args)

	result, err := k.sparc.ExecutePhase(ctx, *projectID, types.SPARCPhase(*phase))
	if err != nil {
		log.Fatalf("execute_phase failed: %v", err)
	}

	if result.Phase == types.PhaseArchitecture && result.Success {
		if proj, ok := k.sparc.GetProject(*projectID); ok && proj.Architecture != nil {
			k.projects.DeriveADRs(*projectID, *proj.Architecture)
		}
	}

	printJSON(result)
}

func (k *kernel) handleGetProjectStatus(args []string) {
	fs := flag.NewFlagSet("get_project_status", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	_ = fs.Parse(args)

	proj, ok := k.sparc.GetProject(*projectID)
	if !ok {
		log.Fatalf("project not found: %s", *projectID)
	}
	printJSON(proj)
}

func (k *kernel) handleListProjects() {
	printJSON(k.sparc.ListProjects())
}

func (k *kernel) handleRefineImplementation(args []string) {
	fs := flag.NewFlagSet("refine_implementation", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	feedback := fs.String("feedback", "", "one feedback line")
	_ = fs.Parse(args)

	var lines []string
	if *feedback != "" {
		lines = []string{*feedback}
	}
	refinement, err := k.sparc.RefineImplementation(*projectID, lines)
	if err != nil {
		log.Fatalf("refine_implementation failed: %v", err)
	}
	printJSON(refinement)
}

func (k *kernel) handleValidateCompletion(args []string) {
	fs := flag.NewFlagSet("validate_completion", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	_ = fs.Parse(args)

	readiness, err := k.sparc.ValidateCompletion(*projectID)
	if err != nil {
		log.Fatalf("validate_completion failed: %v", err)
	}
	printJSON(readiness)
}

func (k *kernel) handleApplyTemplate(args []string) {
	fs := flag.NewFlagSet("apply_template", flag.ExitOnError)
	templateID := fs.String("template", "", "template id")
	name := fs.String("name", "", "project name")
	domain := fs.String("domain", string(types.DomainGeneral), "project domain")
	complexity := fs.String("complexity", string(types.ComplexityModerate), "project complexity")
	_ = fs.Parse(args)

	spec := types.ProjectSpec{Name: *name, Domain: types.ProjectDomain(*domain), Complexity: types.Complexity(*complexity)}
	specOut, pseudoOut, archOut, report, err := k.templates.Apply(*templateID, spec)
	if err != nil {
		log.Fatalf("apply_template failed: %v", err)
	}
	printJSON(map[string]any{"specification": specOut, "pseudocode": pseudoOut, "architecture": archOut, "report": report})
}

func (k *kernel) handleRegisterAgent(args []string) {
	fs := flag.NewFlagSet("register_agent", flag.ExitOnError)
	id := fs.String("id", "", "agent id")
	agentType := fs.String("type", string(types.AgentCoder), "agent type")
	_ = fs.Parse(args)

	agent := types.Agent{
		ID:           *id,
		Type:         types.AgentType(*agentType),
		Status:       types.AgentIdle,
		Capabilities: map[string]struct{}{*agentType: {}},
		RegisteredAt: time.Now(),
	}
	if err := k.registry.Register(agent); err != nil {
		log.Fatalf("register_agent failed: %v", err)
	}
	printJSON(agent)
}

func (k *kernel) handleRemoveAgent(args []string) {
	fs := flag.NewFlagSet("remove_agent", flag.ExitOnError)
	id := fs.String("id", "", "agent id")
	_ = fs.Parse(args)

	if err := k.registry.Remove(*id); err != nil {
		log.Fatalf("remove_agent failed: %v", err)
	}
	fmt.Printf("removed agent %s\n", *id)
}

func (k *kernel) handleListAgents() {
	printJSON(k.registry.List(registry.Filter{}))
}

func (k *kernel) handleCoordinateSwarm(ctx context.Context, args []string) {
	agents := k.registry.List(registry.Filter{})
	result := k.swarm.CoordinateSwarm(ctx, agents, swarm.TopologyMesh)
	printJSON(result)
}

func (k *kernel) handleStartWorkflow(args []string) {
	fs := flag.NewFlagSet("start_workflow", flag.ExitOnError)
	name := fs.String("name", "", "registered workflow name")
	_ = fs.Parse(args)

	id, err := k.workflows.StartWorkflow(*name, map[string]any{})
	if err != nil {
		log.Fatalf("start_workflow failed: %v", err)
	}
	fmt.Printf("started workflow %s as instance %s\n", *name, id)
}

func (k *kernel) handleRouteTask(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("route_task", flag.ExitOnError)
	id := fs.String("id", "", "task id")
	description := fs.String("description", "", "task description")
	subagentType := fs.String("subagent-type", "", "subagent type")
	priority := fs.String("priority", string(types.PriorityMedium), "task priority")
	useSparc := fs.Bool("use-sparc", false, "force SPARC methodology")
	_ = fs.Parse(args)

	req := taskcoordinator.TaskRequest{
		ID:                  *id,
		Description:         *description,
		Priority:            types.Priority(*priority),
		SubagentType:        *subagentType,
		UseSparcMethodology: *useSparc,
	}
	outcome, err := k.tasks.Route(ctx, req)
	if err != nil {
		log.Fatalf("route_task failed: %v", err)
	}
	printJSON(outcome)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
}

func printUsage() {
	fmt.Println("Usage: swarm-kernel <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  create_project          Initialize a SPARC project and its document chain")
	fmt.Println("  execute_phase           Run one SPARC phase for a project")
	fmt.Println("  get_project_status      Show a project's current phase state")
	fmt.Println("  list_projects           List all known SPARC projects")
	fmt.Println("  refine_implementation   Record a refinement iteration against feedback")
	fmt.Println("  validate_completion     Check the completion phase's readiness bars")
	fmt.Println("  apply_template          Apply a registered template to a new project")
	fmt.Println("  register_agent          Register a new agent in the registry")
	fmt.Println("  remove_agent            Remove an agent from the registry")
	fmt.Println("  list_agents             List all registered agents")
	fmt.Println("  coordinate_swarm        Run one coordination pass over all agents")
	fmt.Println("  start_workflow          Start a registered workflow by name")
	fmt.Println("  route_task              Route one task directly or through SPARC")
	fmt.Println("  version                 Show version information")
	fmt.Println("  help                    Show this help message")
}
