package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hurstaa/landlab/internal/cli"
	errs "github.com/hurstaa/landlab/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		if code := errs.GetCode(err); code != "" {
			c.Logger.Debug("command failed", "code", code)
		}
		fmt.Fprintln(os.Stderr, "Error:", errs.UserMessage(err))
		os.Exit(1)
	}
}
