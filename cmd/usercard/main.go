package main

import (
	"fmt"
	"os"

	"github.com/PizzaHomicide/usercard/internal/config"
	"github.com/PizzaHomicide/usercard/internal/log"
	"github.com/PizzaHomicide/usercard/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	log.SetDefaultLogger(logger)

	log.Debug("Starting usercard", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	err = newRootCmd(cfg).Execute()
	if err != nil {
		log.Error("Command failed", "error", err)
	}
	logger.Close()

	if err != nil {
		os.Exit(1)
	}
}
