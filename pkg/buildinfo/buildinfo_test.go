package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get("mina")

	if info.AppName != "mina" {
		t.Errorf("AppName = %q, want mina", info.AppName)
	}
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestString(t *testing.T) {
	s := String()

	if !strings.Contains(s, Version) {
		t.Errorf("String() = %q, missing version", s)
	}
	if !strings.Contains(s, Commit) {
		t.Errorf("String() = %q, missing commit", s)
	}
}
