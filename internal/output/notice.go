// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// StaleNotice tells the user that what was served from an expired entry
// stored at storedAt because the refresh failed with cause.
func StaleNotice(w io.Writer, what string, storedAt, now time.Time, cause error) {
	age := humanize.RelTime(storedAt, now, "old", "from now")
	msg := fmt.Sprintf("warning: %s is cached data %s", what, age)
	if cause != nil {
		msg += fmt.Sprintf(" (refresh failed: %v)", cause)
	}
	fmt.Fprintln(w, msg)
}
