package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/yumeai/yume/internal/config"
	"github.com/yumeai/yume/internal/consts"
)

var onboardHwd = &OnboardRunner{}

type OnboardRunner struct{}

var (
	cBanner  = color.New(color.FgCyan, color.Bold)
	cSuccess = color.New(color.FgGreen)
	cDim     = color.New(color.FgHiBlack)
)

func (r *OnboardRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:   "onboard",
		Usage:  "Create the data directory and a starter config file",
		Action: r.run,
	}
}

func (r *OnboardRunner) run(_ context.Context, _ *cli.Command) error {
	cBanner.Println("Welcome to Yume!")

	if err := os.MkdirAll(consts.DefaultDataDir(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	cfgPath := consts.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := config.WriteDefault(cfgPath); err != nil {
		return err
	}

	cSuccess.Printf("Starter config written to %s\n", cfgPath)
	cDim.Println("Edit it to set your timezone, AI credentials, and notification channels,")
	cDim.Println("then start the engine with \"yume serve\".")
	return nil
}
