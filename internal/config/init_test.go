package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeConfigurationCreatesLocalFile(t *testing.T) {
	workingDirectory := t.TempDir()
	path, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal})
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, "config.yaml")
	if path != expectedPath {
		t.Fatalf("expected path %s, got %s", expectedPath, path)
	}
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read config: %v", readErr)
	}
	if !strings.Contains(string(content), "ignore_file: .gptignore") {
		t.Fatalf("unexpected configuration content: %s", string(content))
	}
}

func TestInitializeConfigurationTemplateLoads(t *testing.T) {
	workingDirectory := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", t.TempDir())
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory}); err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	loaded, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	if loaded.Output != "output.txt" || loaded.Tokens.Model != "gpt-4o" || loaded.Debounce != "0s" {
		t.Fatalf("unexpected configuration from template: %+v", loaded)
	}
}

func TestInitializeConfigurationHonorsGlobalTarget(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	path, err := InitializeConfiguration(InitOptions{Target: InitTargetGlobal, Force: true})
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	if !strings.HasPrefix(path, homeDir) {
		t.Fatalf("expected configuration under home dir, got %s", path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected file to exist at %s: %v", path, statErr)
	}
}

func TestInitializeConfigurationPreventsOverwriteWithoutForce(t *testing.T) {
	workingDirectory := t.TempDir()
	path := filepath.Join(workingDirectory, "config.yaml")
	if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write seed config: %v", err)
	}
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal}); err == nil {
		t.Fatalf("expected error when configuration already exists")
	}
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Force: true}); err != nil {
		t.Fatalf("expected Force to overwrite: %v", err)
	}
}

func TestInitializeConfigurationRejectsUnknownTarget(t *testing.T) {
	if _, err := InitializeConfiguration(InitOptions{Target: "elsewhere"}); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}
