// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"runtime"

	"github.com/samber/oops"
)

// stackBufSize bounds the stack captured for a recovered panic.
const stackBufSize = 64 << 10

// Guard runs fn and converts a panic into an error carrying the panic value
// and stack. Plugin code is trusted but not infallible; the host calls every
// plugin entry point through Guard.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, stackBufSize)
			n := runtime.Stack(buf, false)
			err = oops.With("panic", r).With("stack", string(buf[:n])).Errorf("panic: %v", r)
		}
	}()
	return fn()
}
