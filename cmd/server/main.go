package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/patrimonio/internal/server"
	"github.com/dmitrijs2005/patrimonio/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	app.Run(ctx)

}
