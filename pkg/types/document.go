// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

import "time"

// DocumentKind is one branch of the Document sum type described in
// spec.md §9 ("Duck-typed documents"): markdown documents are modeled as a
// sum type with a shared header instead of an opaque map, with kind
// determined by an explicit constructor rather than a directory prefix
// (directory scanning is an excluded external collaborator).
type DocumentKind string

const (
	DocVision  DocumentKind = "vision"
	DocADR     DocumentKind = "adr"
	DocPRD     DocumentKind = "prd"
	DocEpic    DocumentKind = "epic"
	DocFeature DocumentKind = "feature"
	DocTask    DocumentKind = "task"
	DocSpec    DocumentKind = "spec"
)

// DocumentHeader is the header shared by every document variant.
type DocumentHeader struct {
	ID        string
	Kind      DocumentKind
	Title     string
	CreatedAt time.Time
	Metadata  map[string]string
}

// Document is a record produced by the Project Coordinator. Only one of the
// payload fields is populated, matching DocumentHeader.Kind.
type Document struct {
	Header DocumentHeader

	Vision  *VisionPayload
	ADR     *ADRPayload
	PRD     *PRDPayload
	Epic    *EpicPayload
	Feature *FeaturePayload
	Task    *TaskPayload
	Spec    *SpecPayload
}

// VisionPayload captures the top-level product vision for a project.
type VisionPayload struct {
	Summary string
	Goals   []string
}

// ADRPayload captures one architectural decision record.
type ADRPayload struct {
	Decision     string
	Context      string
	Consequences []string
	Status       string // proposed | accepted | superseded
}

// PRDPayload captures a product requirements document.
type PRDPayload struct {
	Requirements []string
}

// EpicPayload groups a set of related features.
type EpicPayload struct {
	Features []string // Feature document ids
}

// FeaturePayload describes one feature derived from an epic.
type FeaturePayload struct {
	EpicID      string
	Description string
}

// TaskPayload describes one generated task document (one per SPARC phase,
// per spec.md §4.6). OptimalAgentType names a specialized role (e.g.
// "system-analyst", "performance-optimizer") rather than a value from the
// Agent Registry's closed AgentType taxonomy — the Project Coordinator's
// phase-to-role mapping is a finer-grained hint for task briefing, not a
// dispatch capability.
type TaskPayload struct {
	PhaseName        string
	EstimatedEffort  string
	Dependencies     []string
	OptimalAgentType string
}

// SpecPayload wraps a completed Specification as a document.
type SpecPayload struct {
	Specification Specification
}

// NewVisionDocument constructs a Vision document.
func NewVisionDocument(id, title, summary string, goals []string, createdAt time.Time) Document {
	return Document{
		Header: DocumentHeader{ID: id, Kind: DocVision, Title: title, CreatedAt: createdAt},
		Vision: &VisionPayload{Summary: summary, Goals: goals},
	}
}

// NewADRDocument constructs an ADR document.
func NewADRDocument(id, title string, payload ADRPayload, createdAt time.Time) Document {
	return Document{
		Header: DocumentHeader{ID: id, Kind: DocADR, Title: title, CreatedAt: createdAt},
		ADR:    &payload,
	}
}

// NewPRDDocument constructs a PRD document.
func NewPRDDocument(id, title string, requirements []string, createdAt time.Time) Document {
	return Document{
		Header: DocumentHeader{ID: id, Kind: DocPRD, Title: title, CreatedAt: createdAt},
		PRD:    &PRDPayload{Requirements: requirements},
	}
}

// NewEpicDocument constructs an Epic document grouping feature document ids.
func NewEpicDocument(id, title string, features []string, createdAt time.Time) Document {
	return Document{
		Header: DocumentHeader{ID: id, Kind: DocEpic, Title: title, CreatedAt: createdAt},
		Epic:   &EpicPayload{Features: features},
	}
}

// NewFeatureDocument constructs a Feature document derived from an epic.
func NewFeatureDocument(id, title, epicID, description string, createdAt time.Time) Document {
	return Document{
		Header:  DocumentHeader{ID: id, Kind: DocFeature, Title: title, CreatedAt: createdAt},
		Feature: &FeaturePayload{EpicID: epicID, Description: description},
	}
}

// NewTaskDocument constructs a per-phase task document.
func NewTaskDocument(id, title string, payload TaskPayload, createdAt time.Time) Document {
	return Document{
		Header: DocumentHeader{ID: id, Kind: DocTask, Title: title, CreatedAt: createdAt},
		Task:   &payload,
	}
}
