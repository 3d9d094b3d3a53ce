// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package taskcoordinator

import (
	"strings"

	"swarmkernel/pkg/types"
)

// descriptionLengthThreshold is the literal threshold from spec.md §4.3. An
// Open Question left unresolved upstream: whether this should be
// configurable is noted but not decided — kept literal here, see DESIGN.md.
const descriptionLengthThreshold = 200

const sourceAcceptanceCriteriaThreshold = 3

// useSPARC implements the routing rule (spec.md §4.3): SPARC is used when
// any condition holds, otherwise the task runs directly.
func useSPARC(req TaskRequest) bool {
	if req.UseSparcMethodology {
		return true
	}
	if req.Priority == types.PriorityHigh || req.Priority == types.PriorityCritical {
		return true
	}
	if len(req.Description) > descriptionLengthThreshold {
		return true
	}
	if req.SourceDocument != nil && sourceDocumentIsComplex(*req.SourceDocument) {
		return true
	}
	return false
}

func sourceDocumentIsComplex(doc SourceDocument) bool {
	if len(doc.AcceptanceCriteria) > sourceAcceptanceCriteriaThreshold {
		return true
	}
	for _, tag := range doc.Tags {
		lower := strings.ToLower(tag)
		if lower == "complex" || lower == "architecture" {
			return true
		}
	}
	if strings.Contains(strings.ToLower(doc.TechnicalApproach), "architecture") {
		return true
	}
	return false
}
