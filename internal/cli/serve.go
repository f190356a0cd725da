package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"pillarlog/internal/api"
	"pillarlog/internal/engine"
)

type ServeCmd struct {
	Addr string `short:"a" help:"Listen address (overrides config)."`
}

func (c *ServeCmd) Run(appCtx *Context) error {
	cfg, err := appCtx.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.ListenAddr = c.Addr
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
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

	server := newHTTPServer(cfg.ListenAddr, api.New(engine.New(provider), loc))

	log.Printf("pillarlog listening on %s (driver=%s, tz=%s)", cfg.ListenAddr, cfg.Driver, cfg.Timezone)
	return server.ListenAndServe()
}

// newHTTPServer bounds header reads so a stalled client cannot hold a
// connection open indefinitely.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
