package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/yumeai/yume/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:  "yume",
		Usage: "Yume, the proactive reminder assistant",
		Commands: []*cli.Command{
			serveHwd.cmd(),
			onboardHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
