package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// Names shared across the materializer, the watcher and the CLI.
const (
	// IgnoreFileName is the rules file read from the working directory at startup.
	IgnoreFileName = ".gptignore"
	// GitDirectoryName is the name of the Git repository metadata directory.
	GitDirectoryName = ".git"
	// DefaultOutputFileName is the artifact written when no output path is given.
	DefaultOutputFileName = "output.txt"
	// ConfigFileName is the optional configuration file looked up locally and globally.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".gpt-repo-stream"
)

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes a fatal command failure.
const ApplicationExecutionFailedMessage = "application execution failed"
