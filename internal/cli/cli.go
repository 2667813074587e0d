// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SourM1lk/gpt-repo-stream/internal/config"
	"github.com/SourM1lk/gpt-repo-stream/internal/ignore"
	"github.com/SourM1lk/gpt-repo-stream/internal/services/clipboard"
	"github.com/SourM1lk/gpt-repo-stream/internal/snapshot"
	"github.com/SourM1lk/gpt-repo-stream/internal/tokenizer"
	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
	"github.com/SourM1lk/gpt-repo-stream/internal/watch"
)

const (
	repoFlagName          = "repo"
	repoFlagShorthand     = "r"
	outputFlagName        = "output"
	outputFlagShorthand   = "o"
	ignoreFileFlagName    = "ignore-file"
	configFlagName        = "config"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	clipboardFlagName     = "clipboard"
	debounceFlagName      = "debounce"
	onceFlagName          = "once"
	versionFlagName       = "version"
	globalFlagName        = "global"
	forceFlagName         = "force"
	versionTemplate       = "gpt-repo-stream version: %s\n"
	rootUse               = "gpt-repo-stream"
	rootShortDescription  = "stream a repository into one text file for language models"
	rootLongDescription   = `gpt-repo-stream writes every text file under --repo into a single artifact,
each file introduced by a '----' line and its relative path, and rewrites the
artifact whenever a file under the repository is modified.
Patterns listed in .gptignore exclude matching files.`
	rootUsageExample = `  # Keep output.txt in sync with the current project
  gpt-repo-stream --repo .

  # Write the artifact once, count its tokens and exit
  gpt-repo-stream -r ./service -o service.txt --tokens --once`
	initUse                         = "init"
	initShortDescription            = "write a default configuration file"
	initResultTemplate              = "Configuration written to %s\n"
	repoFlagDescription             = "directory to materialize"
	outputFlagDescription           = "artifact path (default output.txt)"
	ignoreFileFlagDescription       = "ignore rules file (default .gptignore)"
	configFlagDescription           = "configuration file to load instead of ./config.yaml"
	tokensFlagDescription           = "log the token count of the artifact after each pass"
	modelFlagDescription            = "tokenizer model to use for token counting"
	clipboardFlagDescription        = "copy the artifact to the clipboard after each pass"
	debounceFlagDescription         = "fold modifications arriving within this period into one pass"
	onceFlagDescription             = "write the artifact once and exit"
	versionFlagDescription          = "display application version"
	globalFlagDescription           = "write the configuration under the home directory"
	forceFlagDescription            = "overwrite an existing configuration file"
	logIgnoreRulesLoadFailed        = "Failed to load ignore rules"
	logIgnoreRulesLoaded            = "Loaded ignore rules"
	logFieldIgnoreFile              = "ignore_file"
	logFieldPatterns                = "patterns"
	tokenizerInitFailedTemplate     = "initialize tokenizer: %w"
	outputPathResolveFailedTemplate = "resolve output path %s: %w"
)

// environment holds the collaborators the commands reach outside the process.
type environment struct {
	workingDirectory string
	copier           clipboard.Copier
	newCounter       func(tokenizer.Config) (tokenizer.Counter, error)
	subscribe        func(root string) (watch.Source, error)
}

func defaultEnvironment() environment {
	return environment{
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
		subscribe: func(root string) (watch.Source, error) {
			source, sourceError := watch.NewFSNotifySource(root)
			if sourceError != nil {
				return nil, sourceError
			}
			return source, nil
		},
	}
}

// Execute runs the gpt-repo-stream application until the watch ends or the
// process receives SIGINT or SIGTERM.
func Execute(logger *zap.Logger) error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	rootCommand := createRootCommand(logger, defaultEnvironment())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(signalContext)
}

// rootOptions stores the values of the root command flags.
type rootOptions struct {
	repository  string
	output      string
	ignoreFile  string
	configPath  string
	model       string
	debounce    string
	tokens      *bool
	clipboard   *bool
	once        *bool
	showVersion bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger, env environment) *cobra.Command {
	var options rootOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			return runStream(command, logger, env, options)
		},
	}

	flags := rootCommand.Flags()
	flags.StringVarP(&options.repository, repoFlagName, repoFlagShorthand, "", repoFlagDescription)
	flags.StringVarP(&options.output, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flags.StringVar(&options.ignoreFile, ignoreFileFlagName, "", ignoreFileFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	flags.StringVar(&options.debounce, debounceFlagName, "", debounceFlagDescription)
	registerOptionalBooleanFlag(flags, &options.tokens, tokensFlagName, tokensFlagDescription)
	registerOptionalBooleanFlag(flags, &options.clipboard, clipboardFlagName, clipboardFlagDescription)
	registerOptionalBooleanFlag(flags, &options.once, onceFlagName, onceFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(env))
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// toConfiguration turns the given flags into a configuration layer that
// overrides file based configuration.
func (options rootOptions) toConfiguration() config.ApplicationConfiguration {
	return config.ApplicationConfiguration{
		Repository: options.repository,
		Output:     options.output,
		IgnoreFile: options.ignoreFile,
		Debounce:   options.debounce,
		Once:       options.once,
		Clipboard:  options.clipboard,
		Tokens: config.TokenConfiguration{
			Enabled: options.tokens,
			Model:   options.model,
		},
	}
}

func runStream(command *cobra.Command, logger *zap.Logger, env environment, options rootOptions) error {
	fileConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: env.workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return loadError
	}
	settings, resolveError := config.Resolve(fileConfiguration.Merge(options.toConfiguration()))
	if resolveError != nil {
		return resolveError
	}

	rules, rulesError := ignore.Load(settings.IgnoreFilePath)
	if rulesError != nil {
		logger.Warn(logIgnoreRulesLoadFailed, zap.String(logFieldIgnoreFile, settings.IgnoreFilePath), zap.Error(rulesError))
		rules = ignore.RuleSet{}
	} else if rules.Len() > 0 {
		logger.Debug(logIgnoreRulesLoaded, zap.String(logFieldIgnoreFile, settings.IgnoreFilePath), zap.Strings(logFieldPatterns, rules.Patterns()))
	}
	settings = settings.WithRules(rules)

	runner, runnerError := newPassRunner(settings, logger, env)
	if runnerError != nil {
		return runnerError
	}
	if settings.Once {
		return runner.Refresh()
	}

	absoluteOutputPath, outputPathError := filepath.Abs(settings.OutputPath)
	if outputPathError != nil {
		return fmt.Errorf(outputPathResolveFailedTemplate, settings.OutputPath, outputPathError)
	}
	loop := watch.Loop{
		Subscribe: func() (watch.Source, error) {
			return env.subscribe(settings.Root)
		},
		Filter:    watch.Filter{Root: settings.Root, OutputPath: absoluteOutputPath},
		Refresher: runner,
		Logger:    logger,
		Debounce:  settings.Debounce,
	}
	return loop.Run(command.Context())
}

func newPassRunner(settings config.Settings, logger *zap.Logger, env environment) (passRunner, error) {
	runner := passRunner{
		writer: snapshot.Writer{
			Root:       settings.Root,
			Rules:      settings.Rules,
			OutputPath: settings.OutputPath,
		},
		logger: logger,
	}
	if settings.TokensEnabled {
		counter, counterError := env.newCounter(tokenizer.Config{Model: settings.TokenModel})
		if counterError != nil {
			return passRunner{}, fmt.Errorf(tokenizerInitFailedTemplate, counterError)
		}
		runner.counter = counter
	}
	if settings.Clipboard {
		if env.copier == nil {
			return passRunner{}, errors.New("clipboard requested but no clipboard is available")
		}
		runner.copier = env.copier
	}
	return runner, nil
}

func createInitCommand(env environment) *cobra.Command {
	var useGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if useGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: env.workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), initResultTemplate, writtenPath)
			return printError
		},
	}
	initCommand.Flags().BoolVar(&useGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
