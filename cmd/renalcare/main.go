// Command renalcare is a personal chronic kidney disease tracker.
//
// Exit codes: 0 = success, 1 = operation failed, 2 = command error.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/renalcare/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Command errors are already reported through the output formatter;
	// flag and argument errors from cobra are not.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
