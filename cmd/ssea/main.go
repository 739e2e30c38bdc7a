package main

import (
	"fmt"
	"os"

	"ssea/internal/errors"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		// bad input files exit 1, configuration and runtime failures exit 2
		os.Exit(errors.ExitCode(err))
	}
}
