package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/gorouter"
	overviewpkg "github.com/goliatone/go-overview/pkg/overview"
)

type serveCmd struct {
	Addr string `help:"Listen address (overrides app.addr)."`
}

func (cmd *serveCmd) Run(ctx context.Context, app *cli) error {
	rt, err := newRuntime(app.Config)
	if err != nil {
		return err
	}
	defer rt.Close()

	renderer, err := overview.NewTemplateRenderer()
	if err != nil {
		return err
	}
	svc := overviewpkg.NewApp(overviewpkg.AppOptions{
		Page:       rt.pageOptions(renderer),
		SessionTTL: rt.cfg.Page.SessionTTL,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(overviewpkg.RouterConfig[*fiber.App](svc, server.Router(), rt.cfg.App.BasePath)); err != nil {
		return err
	}

	go sweepSessions(ctx, svc.Sessions, sweepEvery(rt.cfg.Page.SweepInterval), rt.log.Logger)

	addr := rt.cfg.App.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(addr)
	}()
	rt.log.Info("overview ready",
		zap.String("addr", addr),
		zap.String("base_path", rt.cfg.App.BasePath),
		zap.String("env", rt.cfg.App.Env),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func sweepSessions(ctx context.Context, sessions *overview.SessionStore, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(); removed > 0 {
				log.Debug("page sessions swept", zap.Int("removed", removed), zap.Int("live", sessions.Len()))
			}
		}
	}
}
