// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package dag

import "fmt"

// Engine resolves a node set into a validated execution order and stage
// grouping. It is pure bookkeeping — callers drive the actual per-node
// work.
type Engine struct {
	Scheduler *Scheduler
}

// NewEngine creates a new DAG engine.
func NewEngine() *Engine {
	return &Engine{Scheduler: &Scheduler{}}
}

// Plan validates nodes (cycle-free) and returns both the flat topological
// order and the stage grouping for concurrent execution.
func (e *Engine) Plan(nodes []Node) (order []string, stages [][]string, err error) {
	order, err = e.Scheduler.BuildExecutionOrder(nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build execution order: %w", err)
	}
	stages = Stages(nodes)
	return order, stages, nil
}
