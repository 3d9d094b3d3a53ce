// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package dag

import (
	"fmt"

	"github.com/gammazero/toposort"
)

// Scheduler handles dependency resolution over a set of named nodes.
type Scheduler struct{}

// BuildExecutionOrder performs a topological sort over nodes. Returns a flat
// list of node names in safe execution order, or an error if a cycle is
// detected (kernelerrors callers wrap this as PreconditionFailed).
func (s *Scheduler) BuildExecutionOrder(nodes []Node) ([]string, error) {
	if len(nodes) == 0 {
		return []string{}, nil
	}

	edges := make([]toposort.Edge, 0)
	for _, n := range nodes {
		for _, dep := range n.Deps {
			edges = append(edges, toposort.Edge{dep, n.Name})
		}
	}

	if len(edges) == 0 {
		flatOrder := make([]string, 0, len(nodes))
		for _, n := range nodes {
			flatOrder = append(flatOrder, n.Name)
		}
		return flatOrder, nil
	}

	sortedNodes, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("cycle detected in dependency graph: %w", err)
	}

	inSorted := make(map[string]bool, len(sortedNodes))
	flatOrder := make([]string, 0, len(nodes))

	for _, node := range sortedNodes {
		name := node.(string)
		inSorted[name] = true
		flatOrder = append(flatOrder, name)
	}

	// Prepend nodes that were not part of the dependency graph (roots)
	for _, n := range nodes {
		if !inSorted[n.Name] {
			flatOrder = append([]string{n.Name}, flatOrder...)
		}
	}

	return flatOrder, nil
}

// Stages groups a pre-ordered node list by dependency depth, so callers can
// execute each stage as an independent concurrent wave (the teacher's
// getExecutionStages idiom, generalized from Beads task ids to arbitrary
// node names).
func Stages(nodes []Node) [][]string {
	depByName := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		depByName[n.Name] = n.Deps
	}

	depths := make(map[string]int, len(nodes))
	var depth func(name string, visiting map[string]bool) int
	depth = func(name string, visiting map[string]bool) int {
		if d, ok := depths[name]; ok {
			return d
		}
		if visiting[name] {
			return 0
		}
		visiting[name] = true
		maxDepth := 0
		for _, dep := range depByName[name] {
			if d := depth(dep, visiting); d+1 > maxDepth {
				maxDepth = d + 1
			}
		}
		depths[name] = maxDepth
		return maxDepth
	}

	stageOf := make(map[int][]string)
	maxStage := -1
	for _, n := range nodes {
		d := depth(n.Name, map[string]bool{})
		stageOf[d] = append(stageOf[d], n.Name)
		if d > maxStage {
			maxStage = d
		}
	}

	result := make([][]string, 0, maxStage+1)
	for i := 0; i <= maxStage; i++ {
		result = append(result, stageOf[i])
	}
	return result
}
