// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"fmt"
	"io"
	"strings"
)

// TextView is a line-oriented view most built-in plugins use. Lines longer
// than the parent's width are truncated.
type TextView struct {
	parent Container
	title  string
	lines  []string
}

// NewTextView creates a text view bound to parent.
func NewTextView(parent Container, lines ...string) *TextView {
	return &TextView{
		parent: parent,
		lines:  append([]string(nil), lines...),
	}
}

// SetTitle sets the heading drawn above the lines.
func (v *TextView) SetTitle(title string) {
	v.title = title
}

// SetLines replaces the view's content.
func (v *TextView) SetLines(lines ...string) {
	v.lines = append(v.lines[:0], lines...)
}

// Lines returns a copy of the current content.
func (v *TextView) Lines() []string {
	return append([]string(nil), v.lines...)
}

// Parent returns the container the view is bound to.
func (v *TextView) Parent() Container {
	return v.parent
}

// Render writes the title and lines.
func (v *TextView) Render(w io.Writer) error {
	width := 0
	if v.parent != nil {
		width = v.parent.Width()
	}

	if v.title != "" {
		if _, err := fmt.Fprintln(w, clip(v.title, width)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, clip(strings.Repeat("=", len(v.title)), width)); err != nil {
			return err
		}
	}
	for _, line := range v.lines {
		if _, err := fmt.Fprintln(w, clip(line, width)); err != nil {
			return err
		}
	}
	return nil
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
