package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		zap.S().Errorw("command failed", "error", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
	_ = zap.L().Sync()
}
