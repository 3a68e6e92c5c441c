package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GoSim-25-26J-441/topology-backend/config"
	"github.com/GoSim-25-26J-441/topology-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/service"
)

const usage = `usage: worker <command> [args]

commands:
  export <file|->   write the stored topology as JSON
  import <file|->   validate a JSON topology and replace the stored one
  validate          check the stored topology's invariants
  backup            write one timestamped backup to BACKUP_DIR`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.Init(logger.New(os.Stderr, cfg.App.LogLevel, false))

	ctx := context.Background()
	store, closer, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open snapshot store", "driver", cfg.Store.Driver, "err", err)
	}
	defer closer.Close()

	graph := service.NewGraphService(store)
	args := os.Args[2:]

	switch os.Args[1] {
	case "export":
		err = runExport(ctx, graph, args)
	case "import":
		err = runImport(ctx, graph, args)
	case "validate":
		err = runValidate(ctx, graph)
	case "backup":
		err = runBackup(ctx, graph, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		logger.Fatal("unknown command", "command", os.Args[1])
	}
	if err != nil {
		logger.Fatal(os.Args[1]+" failed", "err", err)
	}
}
