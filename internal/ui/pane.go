// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ui

import (
	"io"
	"sync"

	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Pane is the container views are created in and drawn to.
type Pane struct {
	id    string
	width int
	out   io.Writer
	mu    sync.Mutex
}

var _ pluginsdk.Container = (*Pane)(nil)

// NewPane creates a pane width columns wide that draws to out.
func NewPane(id string, width int, out io.Writer) *Pane {
	return &Pane{id: id, width: width, out: out}
}

// ID implements pluginsdk.Container.
func (p *Pane) ID() string { return p.id }

// Width implements pluginsdk.Container.
func (p *Pane) Width() int { return p.width }

// Show renders v into the pane.
func (p *Pane) Show(v pluginsdk.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return v.Render(p.out)
}
