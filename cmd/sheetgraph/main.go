// Package main provides the sheetgraph operator CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dgallion1/sheetgraph/internal/cli"
)

func main() {
	root := cli.NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
