package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestStreamsAndNewlines(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)

	u.Infof("hello\n")
	u.Successf("done")
	u.Warnf("careful")
	u.Errorf("broke")
	u.Mutedf("summary: new_jobs=2")

	if got := out.String(); got != "hello\ndone\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := errOut.String(); got != "careful\nbroke\nsummary: new_jobs=2\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestColorNeverDisablesEscapes(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)
	if u.ColorEnabled {
		t.Fatal("color enabled under never")
	}

	u.Warnf("plain")
	if strings.Contains(errOut.String(), "\x1b[") {
		t.Errorf("escape codes in output: %q", errOut.String())
	}
}

func TestDisableColorOverridesAlways(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorAlways, true)
	if u.ColorEnabled {
		t.Error("disableColor should win over always")
	}
}

func TestNormalizeColorMode(t *testing.T) {
	tests := []struct {
		value string
		want  ColorMode
	}{
		{"always", ColorAlways},
		{" NEVER ", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},
		{"junk", ColorAuto},
	}
	for _, tt := range tests {
		if got := NormalizeColorMode(tt.value); got != tt.want {
			t.Errorf("NormalizeColorMode(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestColorizeLinkDisabled(t *testing.T) {
	if got := ColorizeLink(nil, false, "text"); got != "text" {
		t.Errorf("got %q", got)
	}
}
