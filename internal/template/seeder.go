// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package template

import "swarmkernel/pkg/types"

// SpecSeeder adapts Registry to internal/sparc's TemplateProvider
// interface: the specification phase only needs a starting-point
// specification, not the full template/apply machinery, so this wrapper
// calls find_best + apply and discards the pseudocode/architecture half of
// apply's output (each subsequent SPARC phase regenerates those from the
// specification it actually produced).
type SpecSeeder struct {
	registry *Registry
}

// NewSpecSeeder wraps a Registry for use as a sparc.TemplateProvider.
func NewSpecSeeder(registry *Registry) *SpecSeeder {
	return &SpecSeeder{registry: registry}
}

// FindBest returns the best-matching template's generated specification, if
// any template is compatible with the project spec.
func (s *SpecSeeder) FindBest(spec types.ProjectSpec) (types.Specification, bool) {
	match, ok := s.registry.FindBest(spec)
	if !ok {
		return types.Specification{}, false
	}
	specOut, _, _, _, err := s.registry.Apply(match.Template.ID, spec)
	if err != nil {
		return types.Specification{}, false
	}
	return specOut, true
}
