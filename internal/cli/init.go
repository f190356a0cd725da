package cli

import (
	"context"
	"fmt"
)

type InitCmd struct{}

func (c *InitCmd) Run(appCtx *Context) error {
	cfg, err := appCtx.loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	provider, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	switch cfg.Driver {
	case "sqlite":
		fmt.Printf("Initialized sqlite storage at %s\n", cfg.SQLitePath)
	case "postgres":
		fmt.Println("Initialized postgres schema")
	default:
		fmt.Println("Memory storage needs no initialization")
	}
	return nil
}
