// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ui runs the single goroutine that owns every plugin view.
package ui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/errutil"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = oops.Code("UI_STOPPED").Errorf("ui loop stopped")

// Loop serialises work onto one goroutine. Functions posted to it run in
// order, one at a time. A panicking function is logged and the loop keeps
// running.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	stop   sync.Once
	logger *slog.Logger
}

// NewLoop creates a loop whose queue holds up to size pending functions.
func NewLoop(size int, logger *slog.Logger) *Loop {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post schedules fn. It blocks while the queue is full and returns false if
// the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- errutil.Guard(fn) }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}

// Run processes posted functions until ctx is cancelled or Stop is called.
// Functions still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	err := errutil.Guard(func() error {
		fn()
		return nil
	})
	if err != nil {
		errutil.LogError(l.logger, "ui task panicked", err)
	}
}

// Stop ends the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Done is closed once the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
