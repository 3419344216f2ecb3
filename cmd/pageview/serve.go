package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageview/pageview/internal/config"
	"github.com/pageview/pageview/internal/handlers"
	"github.com/pageview/pageview/internal/server"
	"github.com/pageview/pageview/internal/server/middlewares"
	"github.com/pageview/pageview/internal/services"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <folder>",
		Short: "Keep the engine running behind the diagnostics API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, loadConfiguration(), args[0])
		},
	}
}

func serve(ctx context.Context, cfg *config.Configuration, folder string) (err error) {
	a, err := newApp(ctx, cfg, folder)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	guard := middlewares.Allow()
	if cfg.Auth.Enabled {
		secret, err := middlewares.ReadSecret(cfg.Auth.SecretFile)
		if err != nil {
			return err
		}
		guard = middlewares.Auth(secret)
	}

	h := handlers.New(services.NewEngineService(a.engine), a.workers)
	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h, guard)
	}, a.metrics.Handler())
	if err != nil {
		return err
	}

	// thumbnails are the background load of an open book
	if _, err := a.thumbnails.Request(a.pages()); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(sctx)
	})

	zap.S().Named("serve").Infow("serving book", "folder", folder, "pages", a.book.Len(), "port", cfg.Server.HTTPPort)
	return g.Wait()
}
