package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/SourM1lk/gpt-repo-stream/internal/cli"
	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// main is the entry point for the gpt-repo-stream command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer func() {
		_ = loggerInstance.Sync()
	}()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
}
