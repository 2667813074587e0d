package cli

import (
	"go.uber.org/zap"

	"github.com/SourM1lk/gpt-repo-stream/internal/services/clipboard"
	"github.com/SourM1lk/gpt-repo-stream/internal/snapshot"
	"github.com/SourM1lk/gpt-repo-stream/internal/tokenizer"
	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

const (
	logOutputUpdatedMessage = "Output updated"
	logTokenCountFailed     = "Failed to count tokens"
	logClipboardCopyFailed  = "Failed to copy output to clipboard"
	logClipboardCopied      = "Copied output to clipboard"
	logFieldOutput          = "output"
	logFieldFiles           = "files"
	logFieldSize            = "size"
	logFieldTokens          = "tokens"
	logFieldTokenizerModel  = "model"
)

// passRunner writes the artifact and runs the optional post-write steps.
type passRunner struct {
	writer  snapshot.Writer
	logger  *zap.Logger
	counter tokenizer.Counter
	copier  clipboard.Copier
}

// Refresh performs one pass. Only a failure to write the artifact is
// returned; token counting and clipboard failures are logged.
func (runner passRunner) Refresh() error {
	summary, writeError := runner.writer.Write()
	if writeError != nil {
		return writeError
	}

	fields := []zap.Field{
		zap.String(logFieldOutput, runner.writer.OutputPath),
		zap.Int(logFieldFiles, summary.Files),
		zap.String(logFieldSize, utils.FormatFileSize(summary.Bytes)),
	}
	if runner.counter != nil {
		countResult, countError := tokenizer.CountFile(runner.counter, runner.writer.OutputPath)
		switch {
		case countError != nil:
			runner.logger.Warn(logTokenCountFailed, zap.Error(countError))
		case countResult.Counted:
			fields = append(fields,
				zap.Int(logFieldTokens, countResult.Tokens),
				zap.String(logFieldTokenizerModel, runner.counter.Name()),
			)
		}
	}
	runner.logger.Info(logOutputUpdatedMessage, fields...)

	if runner.copier != nil {
		if copyError := clipboard.CopyFile(runner.copier, runner.writer.OutputPath); copyError != nil {
			runner.logger.Warn(logClipboardCopyFailed, zap.Error(copyError))
		} else {
			runner.logger.Debug(logClipboardCopied)
		}
	}
	return nil
}
