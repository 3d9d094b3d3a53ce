// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sparc

import (
	"fmt"

	"swarmkernel/pkg/dag"
	"swarmkernel/pkg/kernelerrors"
	"swarmkernel/pkg/types"
)

// generateArchitecture derives an architecture from the pseudocode phase:
// one service component per algorithm, one data-manager component per data
// structure, plus fixed infrastructure components, with dependency edges
// cycle-checked through pkg/dag's toposort-based scheduler.
func generateArchitecture(pseudo types.Pseudocode) (types.Architecture, error) {
	var out types.Architecture

	for _, alg := range pseudo.Algorithms {
		out.Components = append(out.Components, types.ArchComponent{
			Name:            alg.Name + "Service",
			Kind:            types.ComponentService,
			Interfaces:      []string{alg.Name + "API"},
			LatencyTargetMs: 200,
		})
	}
	for _, ds := range pseudo.DataStructures {
		out.Components = append(out.Components, types.ArchComponent{
			Name:       ds.Name + "Manager",
			Kind:       types.ComponentDataManager,
			Interfaces: []string{ds.Name + "Store"},
		})
	}

	out.Components = append(out.Components,
		types.ArchComponent{Name: "APIGateway", Kind: types.ComponentGateway, Interfaces: []string{"HTTPIngress"}},
		types.ArchComponent{Name: "ConfigManager", Kind: types.ComponentConfigManager, Interfaces: []string{"ConfigAPI"}},
		types.ArchComponent{Name: "MonitoringAgent", Kind: types.ComponentMonitoring, Interfaces: []string{"MetricsAPI"}},
	)

	// Every service depends on the gateway and config manager for ingress
	// and configuration; services additionally depend on every data
	// manager.
	managerIndex := make(map[string]string)
	for _, c := range out.Components {
		if c.Kind == types.ComponentDataManager {
			managerIndex[c.Name] = c.Name
		}
	}
	for i := range out.Components {
		c := &out.Components[i]
		if c.Kind != types.ComponentService {
			continue
		}
		c.DependsOn = append(c.DependsOn, "APIGateway", "ConfigManager")
		for managerName := range managerIndex {
			c.DependsOn = append(c.DependsOn, managerName)
		}
	}

	nodes := make([]dag.Node, 0, len(out.Components))
	for _, c := range out.Components {
		nodes = append(nodes, dag.Node{Name: c.Name, Deps: c.DependsOn})
	}
	scheduler := &dag.Scheduler{}
	if _, err := scheduler.BuildExecutionOrder(nodes); err != nil {
		return out, kernelerrors.Wrap(kernelerrors.KindPreconditionFail, component,
			"component dependency graph contains a cycle", err)
	}

	out.Relationships = resolveRelationships(out.Components)
	out.Interfaces = collectInterfaces(out.Components)
	out.DataFlow = buildDataFlows(out.Components)
	out.DeploymentUnits = []string{"swarm-kernel-service", "swarm-kernel-gateway"}
	out.QualityAttributes = []string{"availability", "observability", "horizontal-scalability"}
	out.TechnologyStack = []string{"Go", "gRPC", "structured logging"}
	out.ArchitecturalPatterns = inferPatterns(out.Components)
	out.SecurityRequirements = []string{"all ingress traffic authenticated at the gateway"}
	out.ScalabilityRequirements = []string{"services scale horizontally behind the gateway"}
	return out, nil
}

func resolveRelationships(components []types.ArchComponent) []types.ComponentRelationship {
	var rels []types.ComponentRelationship
	for _, c := range components {
		for _, dep := range c.DependsOn {
			kind := "dependency"
			for _, other := range components {
				if other.Name == dep && other.Kind == types.ComponentDataManager {
					kind = "service-to-data-manager"
				}
			}
			rels = append(rels, types.ComponentRelationship{From: c.Name, To: dep, Kind: kind})
		}
	}
	return rels
}

func collectInterfaces(components []types.ArchComponent) []string {
	var ifaces []string
	for _, c := range components {
		ifaces = append(ifaces, c.Interfaces...)
	}
	return ifaces
}

func buildDataFlows(components []types.ArchComponent) []types.DataFlow {
	var flows []types.DataFlow
	for _, c := range components {
		for _, dep := range c.DependsOn {
			flows = append(flows, types.DataFlow{
				From:      c.Name,
				To:        dep,
				DataType:  inferDataType(dep),
				Protocol:  inferProtocol(dep),
				Frequency: "per-request",
			})
		}
	}
	return flows
}

func inferDataType(target string) string {
	if len(target) > 7 && target[len(target)-7:] == "Manager" {
		return "structured-record"
	}
	switch target {
	case "APIGateway":
		return "http-request"
	case "ConfigManager":
		return "configuration"
	default:
		return "message"
	}
}

func inferProtocol(target string) string {
	switch target {
	case "APIGateway":
		return "HTTP"
	case "ConfigManager":
		return "in-process"
	default:
		return "gRPC"
	}
}

// inferPatterns applies a small set of naming/scale heuristics: more than
// five components suggests a microservice split is warranted, coordination
// or swarm-flavored naming suggests an event-driven style, and any data
// manager present suggests a CQRS-style read/write split. Layered is the
// baseline pattern every architecture gets.
func inferPatterns(components []types.ArchComponent) []string {
	patterns := []string{"Layered"}
	if len(components) > 5 {
		patterns = append(patterns, "Microservices")
	}
	var hasDataManager, hasCoordinationNaming bool
	for _, c := range components {
		if c.Kind == types.ComponentDataManager {
			hasDataManager = true
		}
		if containsAny(c.Name, "Coordinat", "Agent", "Swarm") {
			hasCoordinationNaming = true
		}
	}
	if hasCoordinationNaming {
		patterns = append(patterns, "Event-Driven")
	}
	if hasDataManager {
		patterns = append(patterns, "CQRS")
	}
	return patterns
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}

// validateArchitecture checks that every component dependency resolves to a
// declared component and that every component exposes at least one
// interface.
func validateArchitecture(arch types.Architecture) []types.ValidationResult {
	known := make(map[string]struct{}, len(arch.Components))
	for _, c := range arch.Components {
		known[c.Name] = struct{}{}
	}

	var unresolved []string
	for _, c := range arch.Components {
		for _, dep := range c.DependsOn {
			if _, ok := known[dep]; !ok {
				unresolved = append(unresolved, fmt.Sprintf("%s -> %s", c.Name, dep))
			}
		}
	}
	depResult := types.ValidationResult{
		Criterion: "dependencies_resolved",
		Passed:    len(unresolved) == 0,
		Details:   fmt.Sprintf("%d unresolved dependency edges", len(unresolved)),
	}
	if len(unresolved) == 0 {
		depResult.Score = 1
	} else {
		depResult.Score = boundedRatio(len(arch.Components)-len(unresolved), len(arch.Components))
		for _, edge := range unresolved {
			depResult.Recommendations = append(depResult.Recommendations, "resolve dangling dependency "+edge)
		}
	}

	var missingInterfaces int
	for _, c := range arch.Components {
		if len(c.Interfaces) == 0 {
			missingInterfaces++
		}
	}
	ifaceResult := types.ValidationResult{
		Criterion: "interfaces_defined",
		Passed:    missingInterfaces == 0,
		Score:     boundedRatio(len(arch.Components)-missingInterfaces, max(len(arch.Components), 1)),
		Details:   fmt.Sprintf("%d components missing an interface definition", missingInterfaces),
	}
	if missingInterfaces > 0 {
		ifaceResult.Recommendations = []string{"define at least one interface per component"}
	}

	return []types.ValidationResult{depResult, ifaceResult}
}
