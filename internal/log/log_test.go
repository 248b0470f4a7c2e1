// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &CustomHandler{
		Writer: &buf,
		Now:    func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) },
	}
	l := &log.Logger{Handler: h, Level: log.DebugLevel}

	l.WithFields(log.Fields{"key": "dailyBoxOffice", "age": "2h"}).Warn("using expired cache")

	assert.Equal(t, "2025-06-01 09:30:00 W using expired cache age=2h key=dailyBoxOffice\n", buf.String())
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		env  string
		want log.Level
	}{
		{"", log.ErrorLevel},
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"bogus", log.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("MARQUEE_LOG", tt.env)
			InitLogger()
			l, ok := log.Log.(*log.Logger)
			if assert.True(t, ok) {
				assert.Equal(t, tt.want, l.Level)
			}
		})
	}
}
