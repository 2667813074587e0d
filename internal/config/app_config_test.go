package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

type configTestCase struct {
	name            string
	globalContent   string
	localContent    string
	explicitPath    string
	explicitContent string
	expectOutput    string
	expectDebounce  string
	expectTokens    *bool
	expectModel     string
	expectClipboard *bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:            "local_overrides_global",
			globalContent:   "output: global.txt\nclipboard: true\ntokens:\n  model: gpt-4\n",
			localContent:    "output: local.txt\ndebounce: 250ms\ntokens:\n  enabled: true\n",
			expectOutput:    "local.txt",
			expectDebounce:  "250ms",
			expectTokens:    boolPointer(true),
			expectModel:     "gpt-4",
			expectClipboard: boolPointer(true),
		},
		{
			name:            "explicit_path_replaces_local",
			localContent:    "output: local.txt\n",
			explicitPath:    "custom.yaml",
			explicitContent: "output: custom.txt\n",
			expectOutput:    "custom.txt",
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.Output != testCase.expectOutput {
				t.Fatalf("expected output %q, got %q", testCase.expectOutput, loadedConfig.Output)
			}
			if loadedConfig.Debounce != testCase.expectDebounce {
				t.Fatalf("expected debounce %q, got %q", testCase.expectDebounce, loadedConfig.Debounce)
			}
			if loadedConfig.Tokens.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, loadedConfig.Tokens.Model)
			}
			assertBoolPointer(t, "tokens.enabled", loadedConfig.Tokens.Enabled, testCase.expectTokens)
			assertBoolPointer(t, "clipboard", loadedConfig.Clipboard, testCase.expectClipboard)
		})
	}
}

func TestLoadApplicationConfigurationMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: t.TempDir(), ExplicitFilePath: "absent.yaml"})
	if err == nil {
		t.Fatalf("expected error for missing explicit configuration file")
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error when configuration path is a directory")
	}
}

func assertBoolPointer(t *testing.T, label string, actual, expected *bool) {
	t.Helper()
	if expected == nil {
		if actual != nil {
			t.Fatalf("expected no %s override, got %v", label, *actual)
		}
		return
	}
	if actual == nil || *actual != *expected {
		t.Fatalf("unexpected %s value", label)
	}
}
