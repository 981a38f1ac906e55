package main

import (
	"context"
	"fmt"
	"os"

	"github.com/m04kA/SMC-BayLedger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
