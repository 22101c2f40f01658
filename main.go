package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fabian-plaehn/financeanalyzer/cmd/categoriescmd"
	"github.com/fabian-plaehn/financeanalyzer/cmd/exportcmd"
	"github.com/fabian-plaehn/financeanalyzer/cmd/importcmd"
	"github.com/fabian-plaehn/financeanalyzer/cmd/reapply"
	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
	"github.com/fabian-plaehn/financeanalyzer/cmd/rulescmd"
	"github.com/fabian-plaehn/financeanalyzer/cmd/transactionscmd"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure global log level before any logger is created
	configureLogLevelDirectly()

	// 3. Add all subcommands
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(reapply.Cmd)
	root.Cmd.AddCommand(rulescmd.Cmd)
	root.Cmd.AddCommand(categoriescmd.Cmd)
	root.Cmd.AddCommand(transactionscmd.Cmd)
	root.Cmd.AddCommand(exportcmd.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	// Try to find .env file in current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// Try to find .env in parent directory (project root)
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}

	// Load .env file silently without logging
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level for all logrus instances
func configureLogLevelDirectly() {
	// Get log level from environment variable
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info" // Default log level
	}

	// Parse the log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		// Don't log here, just use default info level if we can't parse
		logLevel = logrus.InfoLevel
	}

	// Set the global logrus level BEFORE any logging happens
	logrus.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
