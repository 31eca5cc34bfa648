// Command partdb manages part records stored in a delimited text file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/partdb/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return cli.ExitSuccess
	}

	// ExitErrors have already been reported through the output formatter.
	// Anything else comes from cobra's flag and argument checks.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return cli.ExitCommandError
}
