// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"encoding/json"
)

// StepHandler executes one workflow step. Implementations may suspend
// (e.g. sleep, wait on an external call) — the engine treats handler
// invocation as a cooperative suspension point (spec.md §5).
type StepHandler interface {
	Execute(ctx context.Context, params map[string]any, workflowCtx map[string]any) (any, error)
}

// StepHandlerFunc adapts a plain function to StepHandler.
type StepHandlerFunc func(ctx context.Context, params map[string]any, workflowCtx map[string]any) (any, error)

func (f StepHandlerFunc) Execute(ctx context.Context, params map[string]any, workflowCtx map[string]any) (any, error) {
	return f(ctx, params, workflowCtx)
}

// HandlerRegistry is the late-bound table of step type -> handler (spec.md
// §4.2: "the workflow engine treats handlers as a late-bound table keyed by
// step type"). No reflection is used; lookups are a plain map.
type HandlerRegistry struct {
	handlers map[string]StepHandler
}

// NewHandlerRegistry creates a registry pre-populated with the built-in
// handlers: delay, log, transform.
func NewHandlerRegistry() *HandlerRegistry {
	r := &HandlerRegistry{handlers: make(map[string]StepHandler)}
	r.Register("delay", StepHandlerFunc(delayHandler))
	r.Register("log", StepHandlerFunc(logHandler))
	r.Register("transform", StepHandlerFunc(transformHandler))
	return r
}

// Register installs (or replaces) the handler for stepType.
func (r *HandlerRegistry) Register(stepType string, handler StepHandler) {
	r.handlers[stepType] = handler
}

// Lookup returns the handler registered for stepType, if any.
func (r *HandlerRegistry) Lookup(stepType string) (StepHandler, bool) {
	h, ok := r.handlers[stepType]
	return h, ok
}

// delayHandler sleeps for params["duration_ms"], respecting ctx cancellation.
func delayHandler(ctx context.Context, params map[string]any, _ map[string]any) (any, error) {
	durationMs, _ := params["duration_ms"].(float64)
	if durationMs <= 0 {
		if ms, ok := params["duration_ms"].(int); ok {
			durationMs = float64(ms)
		}
	}

	timer := time.NewTimer(time.Duration(durationMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return map[string]any{"slept_ms": durationMs}, nil
	}
}

// logHandler records params["message"] via structured logging.
func logHandler(_ context.Context, params map[string]any, _ map[string]any) (any, error) {
	message, _ := params["message"].(string)
	slog.Info("workflow step: log", "message", message)
	return map[string]any{"logged": message}, nil
}

// transformHandler applies a gjson/sjson get-then-set against a nested path
// in the workflow context, the way the teacher's internal/opencode and
// internal/patternmatch packages reach for gjson/sjson for schemaless JSON
// manipulation rather than hand-rolling nested map traversal.
//
// params: {"source_path": "a.b.c", "target_path": "x.y", "default": any}
func transformHandler(_ context.Context, params map[string]any, workflowCtx map[string]any) (any, error) {
	sourcePath, _ := params["source_path"].(string)
	targetPath, _ := params["target_path"].(string)
	if sourcePath == "" || targetPath == "" {
		return nil, fmt.Errorf("transform step requires source_path and target_path")
	}

	encoded, err := json.Marshal(workflowCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow context: %w", err)
	}

	result := gjson.GetBytes(encoded, sourcePath)
	var value any
	if result.Exists() {
		value = result.Value()
	} else if def, ok := params["default"]; ok {
		value = def
	} else {
		return nil, fmt.Errorf("transform step: source_path %q not found", sourcePath)
	}

	updated, err := sjson.SetBytes(encoded, targetPath, value)
	if err != nil {
		return nil, fmt.Errorf("transform step: failed to set target_path %q: %w", targetPath, err)
	}

	var newCtx map[string]any
	if err := json.Unmarshal(updated, &newCtx); err != nil {
		return nil, fmt.Errorf("transform step: failed to decode updated context: %w", err)
	}

	for k := range workflowCtx {
		delete(workflowCtx, k)
	}
	for k, v := range newCtx {
		workflowCtx[k] = v
	}

	return value, nil
}
