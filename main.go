package main

import (
	"os"

	"go.uber.org/zap"

	etlagents "github.com/temirov/etl-agents/cmd/etl-agents"
)

func main() {
	executionErr := etlagents.Execute()
	if executionErr != nil {
		logger := zap.Must(zap.NewProduction())
		logger.Error("command execution failed", zap.Error(executionErr))
		_ = logger.Sync()
		os.Exit(1)
	}
}
