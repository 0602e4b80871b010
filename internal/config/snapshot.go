// SPDX-License-Identifier: MIT

package config

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the immutable, effective configuration for one successful
// load. Holders swap whole snapshots; nothing mutates one in place.
type Snapshot struct {
	Project  Project
	Revision string
	Source   string
	ModTime  time.Time
	LoadedAt time.Time
	Warnings []Warning
}

// BuildSnapshot stamps a validated project with a fresh revision id.
func BuildSnapshot(p Project, source string, modTime time.Time, warnings []Warning) Snapshot {
	return Snapshot{
		Project:  p,
		Revision: uuid.NewString(),
		Source:   source,
		ModTime:  modTime,
		LoadedAt: time.Now().UTC(),
		Warnings: warnings,
	}
}
