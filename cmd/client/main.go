package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agahlya1812/memoboost/internal/client/cli"
	"github.com/agahlya1812/memoboost/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
