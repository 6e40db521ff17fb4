// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package shell

import (
	"strings"

	"github.com/samber/oops"
)

// Command is one parsed shell line.
type Command struct {
	Name string // lower-cased first token
	Args string // remainder, internal whitespace preserved
}

// Parse splits a line into command name and arguments.
func Parse(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{}, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return Command{Name: strings.ToLower(trimmed)}, nil
	}

	return Command{
		Name: strings.ToLower(trimmed[:idx]),
		Args: strings.TrimLeft(trimmed[idx+1:], " \t"),
	}, nil
}
