package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/speccover/internal/cli"
	"github.com/felixgeelhaar/speccover/internal/service"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "speccover", Level: log.WarnLevel})
	if lvl, err := log.ParseLevel(os.Getenv("SPECCOVER_LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	code := cli.Run(os.Args, os.Stdout, os.Stderr, service.New(os.Stdout, logger))
	os.Exit(code)
}
