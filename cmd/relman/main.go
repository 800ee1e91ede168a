package main

import (
	"fmt"
	"os"

	"github.com/relman-dev/relman/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "relman:", err)
		os.Exit(1)
	}
}
