package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rshade/jirafocus/internal/cli"
	"github.com/rshade/jirafocus/pkg/version"
)

func run() error {
	return cli.NewRootCmd(version.GetVersion()).Execute()
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return cli.ExitFailure
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
