package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	kbot "github.com/graffic/kwoatle-go/internal/bot"
	"github.com/graffic/kwoatle-go/internal/bot/middleware"
	"github.com/graffic/kwoatle-go/internal/quotes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot, the reconciler and the metrics listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.Close()

			// Create context with signal handling
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	a.logger.Info("starting kwoatle server", "environment", a.cfg.Environment)

	if a.cfg.Telegram.Token == "" {
		return errors.New("telegram.token is required to serve")
	}

	registry := kbot.NewRegistry()
	kbot.NewQuoteBookCommands(a.book, quotes.NewRenderer()).Register(registry)

	dispatcher, err := kbot.NewDispatcher(registry, a.logger, a.registry)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	opts := []bot.Option{
		bot.WithMiddlewares(middleware.ChatFilter(a.cfg.AllowedChatIDs, a.cfg.AutoLeaveUnauthorized, a.logger)),
		bot.WithDefaultHandler(dispatcher.HandlerFunc()),
	}

	b, err := bot.New(a.cfg.Telegram.Token, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	// Create errgroup for concurrent component management
	g, ctx := errgroup.WithContext(ctx)

	// Verify bot
	user, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach Telegram: %w", err)
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: registry.BotCommands()}); err != nil {
		a.logger.Warn("failed to publish command list", "error", err)
	}

	// Component 1: Bot polling
	g.Go(func() error {
		a.logger.Info("starting bot polling", "username", user.Username)
		b.Start(ctx)
		return ctx.Err()
	})

	// Component 2: Reconciler
	reconciler := quotes.NewReconciler(a.book, quotes.ReconcileConfig{Interval: a.cfg.Reconcile.Interval}, a.logger)
	g.Go(func() error {
		return reconciler.Start(ctx)
	})

	// Component 3: Metrics listener
	if a.cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return a.serveMetrics(ctx)
		})
	}

	a.logger.Info("all components started, waiting for shutdown signal")

	// Wait for all components to complete
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Info("graceful shutdown completed")
			return nil
		}
		return fmt.Errorf("component error: %w", err)
	}

	a.logger.Info("application stopped")
	return nil
}

// serveMetrics exposes the prometheus registry until ctx is done
func (a *app) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting metrics listener", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics listener failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop metrics listener: %w", err)
	}
	a.logger.Info("stopped metrics listener")
	return ctx.Err()
}
