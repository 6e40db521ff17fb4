// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// HasCode reports whether any oops error in err's chain carries code.
// oops reports only the deepest code, so a wrapped error's own code is
// found here but not through Code().
func HasCode(err error, code string) bool {
	for err != nil {
		if oopsErr, ok := oops.AsOops(err); ok {
			if c := oopsErr.Code(); c != nil && fmt.Sprint(c) == code {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}
