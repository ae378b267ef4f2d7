package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tracksel/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error (%s): %v\n", services.Classify(err), err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes bad input from runtime failures.
func exitCode(err error) int {
	switch services.Classify(err) {
	case "validation", "configuration":
		return 2
	case "not_found":
		return 3
	default:
		return 1
	}
}
