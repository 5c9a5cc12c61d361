// Package main is the entry point for countly-postprocessor.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/countly/xcode-postprocessor/cmd/countly-postprocessor/commands"
	"github.com/countly/xcode-postprocessor/internal/injector"
	"github.com/countly/xcode-postprocessor/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger.Init(false, stderr)

	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}

	cli := commands.New()
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(); err != nil {
		var usage injector.UsageError
		var notFound *injector.FileNotFoundError
		if errors.As(err, &usage) || errors.As(err, &notFound) {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return 1
		}
		logger.Error("Error: %v\n", err)
		return 1
	}
	return 0
}
