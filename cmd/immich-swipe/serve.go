package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dev-nick421/immich-swipe/internal/app/swipe"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review queue over HTTP",
		Example: `
immich-swipe serve --server-url https://photos.example.com --api-key $KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := swipe.LoadConfig(v)
			if err != nil {
				return err
			}
			return serve(v, cfg)
		},
	}

	cmd.Flags().String("http-addr", "", "listen address")
	_ = v.BindPFlag("http_addr", cmd.Flags().Lookup("http-addr"))
	return cmd
}

func serve(v *viper.Viper, cfg swipe.Config) error {
	app, err := swipe.Wire(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close error: %v", err)
		}
	}()
	swipe.WatchSettings(v, app.Settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.SubscribeHistory(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("review api listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	go runQueueProcessor(ctx, app, cfg.QueueTickInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	// flush review history published during shutdown
	app.Queue.Process(shutdownCtx)
	log.Println("shutdown complete")
	return nil
}

func runQueueProcessor(ctx context.Context, app *swipe.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.Queue.Tick(ctx)
		}
	}
}
