package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# Directory to materialize. Usually passed with --repo.
repo: ""
output: output.txt
ignore_file: .gptignore
# Quiet period that folds bursts of modifications into one pass, e.g. 250ms.
debounce: 0s
once: false
clipboard: false
tokens:
  enabled: false
  model: gpt-4o
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested
// target and returns the path written. An existing file is only replaced when
// Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, destinationErr := initDestination(options)
	if destinationErr != nil {
		return "", destinationErr
	}

	_, statErr := os.Stat(destinationPath)
	switch {
	case statErr == nil && !options.Force:
		return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
	case statErr != nil && !os.IsNotExist(statErr):
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statErr)
	}

	if writeErr := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeErr != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeErr)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
