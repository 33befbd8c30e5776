package main

import (
	"fmt"
	"os"

	"github.com/verilab/harnessctl/internal/cmd"
	"github.com/verilab/harnessctl/internal/exitcode"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
