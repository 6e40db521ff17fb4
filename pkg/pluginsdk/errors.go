// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/errutil"
)

// Error codes raised by the plugin host.
const (
	// CodeDiscoveryFailed: the plugin root could not be enumerated.
	CodeDiscoveryFailed = "PLUGIN_DISCOVERY_FAILED"
	// CodeLoadFailed: one plugin unit failed to load and was skipped.
	CodeLoadFailed = "PLUGIN_LOAD_FAILED"
	// CodeContractViolation: a plugin is missing a required contract member.
	CodeContractViolation = "PLUGIN_CONTRACT_VIOLATION"
	// CodeViewCreateFailed: CreateView failed; the plugin stays unloaded.
	CodeViewCreateFailed = "VIEW_CREATE_FAILED"
	// CodeHookFailed: OnViewEnter failed; logged and swallowed.
	CodeHookFailed = "VIEW_HOOK_FAILED"
	// CodeNamespaceCreated: an unregistered namespace was created on access.
	CodeNamespaceCreated = "STORAGE_NAMESPACE_CREATED"
)

// ContractViolation builds an error for a plugin that does not satisfy the
// contract.
func ContractViolation(pluginName, format string, args ...any) error {
	return oops.Code(CodeContractViolation).
		In("plugin").
		With("plugin", pluginName).
		Errorf(format, args...)
}

// HasCode reports whether err is an oops error carrying code anywhere in its
// chain.
func HasCode(err error, code string) bool {
	return errutil.HasCode(err, code)
}

// IsContractViolation reports whether err stems from a contract violation.
func IsContractViolation(err error) bool {
	return HasCode(err, CodeContractViolation)
}
