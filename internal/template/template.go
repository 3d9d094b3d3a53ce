// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package template implements the Template Registry (spec.md §4.5): named
// domain templates, compatibility scoring against a project spec, and
// apply-time generation of a specification/pseudocode/architecture seed.
//
// No teacher package matches this concern directly; the registry's
// deterministic-score-with-tie-break shape is grounded in
// internal/registry's dispatcher (score, then lowest-id tie-break), and its
// config-driven template definitions follow the teacher's internal/config
// yaml-struct pattern.
package template

import (
	"time"

	"swarmkernel/pkg/types"
)

const component = "template"

// Metadata describes a template's targeting hints.
type Metadata struct {
	Complexity    types.Complexity
	Tags          []string
	EstimatedTime string
	// RequirementHints are requirement titles/phrases this template is
	// known to satisfy; find_best fuzzy-matches a project's requirements
	// against this list (and Tags) for the requirement-coverage term.
	RequirementHints []string
}

// SpecGenerator produces a baseline specification for a project spec.
type SpecGenerator func(types.ProjectSpec) types.Specification

// PseudocodeGenerator produces pseudocode from a specification.
type PseudocodeGenerator func(types.Specification) types.Pseudocode

// ArchitectureGenerator produces an architecture from pseudocode.
type ArchitectureGenerator func(types.Pseudocode) (types.Architecture, error)

// Template is one named, domain-scoped template with its three generator
// functions and usage statistics.
type Template struct {
	ID       string
	Domain   types.ProjectDomain
	Metadata Metadata

	GenerateSpecification SpecGenerator
	GeneratePseudocode    PseudocodeGenerator
	GenerateArchitecture  ArchitectureGenerator

	UsageCount    int
	LastUsed      time.Time
	AverageRating float64
}

// CustomizationReport records what apply() changed for a project.
type CustomizationReport struct {
	TemplateID  string
	ProjectName string
	Notes       []string
}
