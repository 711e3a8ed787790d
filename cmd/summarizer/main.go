package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(execute())
}

// execute runs the command tree and maps the outcome to an exit status. A
// failed stage has already been logged, so only the error text is repeated.
func execute() int {
	cmd := newRootCommand()
	err := cmd.ExecuteContext(context.Background())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
