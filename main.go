package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Iron-Ham/divvy/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// A sequential recommendation exits nonzero without an error
		// line; the decision report is the output.
		if !errors.Is(err, cmd.ErrNotViable) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
