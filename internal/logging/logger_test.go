package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "r9c.log")
	if err := Initialize(Options{Level: "debug", File: path}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer Close()

	Registry("store ready: membranes=%d", 64)
	RegistryDebug("debug detail %d", 7)
	if err := Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "store ready: membranes=64") {
		t.Errorf("log file missing info entry: %q", out)
	}
	if !strings.Contains(out, "debug detail 7") {
		t.Errorf("log file missing debug entry: %q", out)
	}
	if !strings.Contains(out, "registry") {
		t.Errorf("log file missing category name: %q", out)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r9c.log")
	if err := Initialize(Options{Level: "info", File: path}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer Close()

	MembraneDebug("hidden")
	Membrane("visible")
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	MembraneDebug("revealed")
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry logged at info level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info entry missing: %q", out)
	}
	if !strings.Contains(out, "revealed") {
		t.Errorf("debug entry missing after SetLevel: %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("chatty"); err == nil {
		t.Fatal("SetLevel(chatty) expected error, got nil")
	}
}

func TestGetIsNopBeforeInitialize(t *testing.T) {
	Close()
	// Must not panic or write anywhere.
	Facts("ignored %d", 1)
	FactsDebug("ignored")
	timer := StartTimer(CategoryFacts, "noop")
	timer.Stop()
}
