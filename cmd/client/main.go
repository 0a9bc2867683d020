package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/patrimonio/internal/client/cli"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(os.Stdin, os.Stdout)
	if err := app.RootCommand().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v\n", err)
		stop()
		os.Exit(1)
	}

}
