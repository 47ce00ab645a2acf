package main

import (
	"context"
	"os"

	"github.com/optiscan/optiscan/pkg/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Stderr.WriteString("optiscan: " + err.Error() + "\n")
		os.Exit(1)
	}
}
