package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SourM1lk/gpt-repo-stream/internal/ignore"
	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// ErrRepositoryRequired is returned when no repository root was configured.
var ErrRepositoryRequired = errors.New("repository path is required")

const defaultTokenModel = "gpt-4o"

// Settings is the resolved, read-only configuration for one process.
type Settings struct {
	// Root is the absolute path of the directory being materialized.
	Root string
	// OutputPath is the artifact path exactly as configured.
	OutputPath     string
	IgnoreFilePath string
	Rules          ignore.RuleSet
	Debounce       time.Duration
	Once           bool
	Clipboard      bool
	TokensEnabled  bool
	TokenModel     string
}

// Resolve validates configuration and fills in defaults. Rules are left empty;
// callers load them with WithRules.
func Resolve(configuration ApplicationConfiguration) (Settings, error) {
	repository := strings.TrimSpace(configuration.Repository)
	if repository == "" {
		return Settings{}, ErrRepositoryRequired
	}
	absoluteRoot, absoluteErr := filepath.Abs(repository)
	if absoluteErr != nil {
		return Settings{}, fmt.Errorf("resolve repository path %s: %w", repository, absoluteErr)
	}
	rootInfo, statErr := os.Stat(absoluteRoot)
	if statErr != nil {
		return Settings{}, fmt.Errorf("repository path %s: %w", repository, statErr)
	}
	if !rootInfo.IsDir() {
		return Settings{}, fmt.Errorf("repository path %s is not a directory", repository)
	}

	settings := Settings{
		Root:           absoluteRoot,
		OutputPath:     firstNonEmpty(configuration.Output, utils.DefaultOutputFileName),
		IgnoreFilePath: firstNonEmpty(configuration.IgnoreFile, utils.IgnoreFileName),
		Once:           configuration.Once != nil && *configuration.Once,
		Clipboard:      configuration.Clipboard != nil && *configuration.Clipboard,
		TokensEnabled:  configuration.Tokens.Enabled != nil && *configuration.Tokens.Enabled,
		TokenModel:     firstNonEmpty(configuration.Tokens.Model, defaultTokenModel),
	}

	if debounceText := strings.TrimSpace(configuration.Debounce); debounceText != "" {
		debounce, parseErr := time.ParseDuration(debounceText)
		if parseErr != nil {
			return Settings{}, fmt.Errorf("invalid debounce %q: %w", debounceText, parseErr)
		}
		if debounce < 0 {
			return Settings{}, fmt.Errorf("invalid debounce %q: must not be negative", debounceText)
		}
		settings.Debounce = debounce
	}
	return settings, nil
}

// WithRules returns a copy of settings carrying rules.
func (settings Settings) WithRules(rules ignore.RuleSet) Settings {
	settings.Rules = rules
	return settings
}

func firstNonEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
