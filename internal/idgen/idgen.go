// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package idgen generates short, prefixed, random identifiers shared across
// the kernel's components (workflow instances, SPARC projects, documents,
// tasks). Grounded in the teacher's internal/planner.BeadsCreator.GenerateIssueID,
// which stamps a crypto/rand hex suffix onto a project prefix.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns "<prefix>-<8 hex chars>".
func New(prefix string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf))
}
