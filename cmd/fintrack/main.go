package main

import (
	"context"
	"os"
	"os/signal"

	"fintrack/internal/cli"
	"fintrack/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd(cli.OpenDatabase).ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		cli.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}
