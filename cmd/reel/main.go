package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mmcdole/reel/internal/cli"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	root := cli.NewRootCmd(Version)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
