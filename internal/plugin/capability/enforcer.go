// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package capability checks the grants a plugin unit declares in its
// manifest.
//
// Pattern matching uses gobwas/glob with '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// "storage.read.*" matches "storage.read.library" and "storage.read.home";
// "**" matches any capability.
package capability

import (
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// StorageRead is the capability prefix for reading another namespace.
const StorageRead = "storage.read."

// CodeInvalid marks a grant pattern that cannot be compiled or names an
// unknown capability family.
const CodeInvalid = "CAPABILITY_INVALID"

// families are the capability roots a pattern may start with.
var families = map[string]bool{"storage": true, "*": true, "**": true}

type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer checks unit capabilities at runtime.
//
// Enforcer is safe for concurrent use. The zero value is ready to use.
type Enforcer struct {
	grants map[string][]compiledGrant
	mu     sync.RWMutex
}

// NewEnforcer creates a capability enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{
		grants: make(map[string][]compiledGrant),
	}
}

// SetGrants replaces the capabilities of unit. If any pattern is invalid
// nothing changes.
func (e *Enforcer) SetGrants(unit string, capabilities []string) error {
	if unit == "" {
		return oops.Code(CodeInvalid).In("capability").Errorf("unit name cannot be empty")
	}

	compiled := make([]compiledGrant, len(capabilities))
	for i, pattern := range capabilities {
		errb := oops.Code(CodeInvalid).In("capability").With("unit", unit).With("pattern", pattern)
		if pattern == "" {
			return errb.Errorf("capability %d: empty pattern", i)
		}
		root, _, _ := strings.Cut(pattern, ".")
		if !families[root] {
			return errb.Hint("capabilities start with storage.").Errorf("unknown capability family %q", root)
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return errb.Wrap(err)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.grants == nil {
		e.grants = make(map[string][]compiledGrant)
	}
	e.grants[unit] = compiled
	return nil
}

// RemoveGrants forgets unit. Unknown units are ignored.
func (e *Enforcer) RemoveGrants(unit string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.grants, unit)
}

// Grants returns the patterns granted to unit, or nil if it is unknown.
func (e *Enforcer) Grants(unit string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grants, ok := e.grants[unit]
	if !ok {
		return nil
	}
	patterns := make([]string, len(grants))
	for i, g := range grants {
		patterns[i] = g.pattern
	}
	return patterns
}

// Units lists registered units, sorted.
func (e *Enforcer) Units() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	units := make([]string, 0, len(e.grants))
	for u := range e.grants {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}

// Check reports whether unit holds capability. Unknown units and empty
// capabilities are denied.
func (e *Enforcer) Check(unit, capability string) bool {
	if capability == "" {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, grant := range e.grants[unit] {
		if grant.glob.Match(capability) {
			return true
		}
	}
	return false
}

// CanRead reports whether unit may read namespace.
func (e *Enforcer) CanRead(unit, namespace string) bool {
	return e.Check(unit, StorageRead+namespace)
}
