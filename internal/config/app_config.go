// Package config loads optional YAML configuration and resolves the immutable
// settings shared by the materializer and the watch loop.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration mirrors the YAML configuration file. Unset values
// stay nil or empty so that later sources only override what they specify.
type ApplicationConfiguration struct {
	Repository string             `mapstructure:"repo"`
	Output     string             `mapstructure:"output"`
	IgnoreFile string             `mapstructure:"ignore_file"`
	Debounce   string             `mapstructure:"debounce"`
	Once       *bool              `mapstructure:"once"`
	Clipboard  *bool              `mapstructure:"clipboard"`
	Tokens     TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting after each pass.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the global file under
// the home directory and then from the local or explicit file, local values
// taking precedence. Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	return merged.Merge(localConfig), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Repository != "" {
		result.Repository = override.Repository
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if override.Debounce != "" {
		result.Debounce = override.Debounce
	}
	if override.Once != nil {
		result.Once = cloneBool(override.Once)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
