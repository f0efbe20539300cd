package mlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelsFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(true)
	l.out = &buf

	l.Info("mounted %s", "/mnt/db")
	got := buf.String()
	want := "** mdbfs: INFO: mounted /mnt/db\n"
	if got != want {
		t.Errorf("Info() wrote %q, want %q", got, want)
	}
}

func TestDebugGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(false)
	l.out = &buf

	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Debug() wrote %q with debug disabled, want nothing", buf.String())
	}

	l.debug = true
	l.Debug("now it appears")
	if !strings.Contains(buf.String(), "DEBUG: now it appears") {
		t.Errorf("Debug() wrote %q, missing expected text", buf.String())
	}
}

func TestAllLevelsAlwaysEmittedExceptDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(false)
	l.out = &buf

	l.Info("a")
	l.Warn("b")
	l.Fail("c")

	got := buf.String()
	for _, want := range []string{"INFO: a", "WARN: b", "FAIL: c"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}
