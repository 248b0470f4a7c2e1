// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// MARQUEE_LOG env variable.
func InitLogger() {
	log.SetHandler(&CustomHandler{})

	level, err := log.ParseLevel(strings.ToLower(os.Getenv("MARQUEE_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// CustomHandler formats log messages and writes to stderr so they never mix
// with command output.
type CustomHandler struct {
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	timestamp := now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	message := e.Message

	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		message += fmt.Sprintf(" %s=%v", k, e.Fields[k])
	}

	fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, message)
	return nil
}
