package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/azurechat/chatpage"
	"github.com/papercomputeco/azurechat/pkg/config"
	"github.com/papercomputeco/azurechat/pkg/conversation"
	"github.com/papercomputeco/azurechat/pkg/logger"
)

const serveLongDesc string = `Serve the chat page.

Starts a web server with the chat widget at /chat. All submissions share a
single conversation that lives as long as the process.

Examples:
  azurechat serve
  AZURECHAT_LISTEN=127.0.0.1:8080 azurechat serve`

const serveShortDesc string = "Serve the chat page at /chat"

const shutdownTimeout = 10 * time.Second

type serveCommander struct{}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewLogger(os.Stdout, cfg.Debug)
	defer log.Sync()

	log.Info("azurechat starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("endpoint", cfg.Azure.Endpoint),
		zap.String("deployment", cfg.Azure.Deployment),
		zap.String("api_version", cfg.Azure.APIVersion),
		zap.Bool("debug", cfg.Debug),
	)

	client, err := conversation.New(cfg.Azure, cfg.Persona, log.Named("conversation"))
	if err != nil {
		return err
	}

	page, err := chatpage.New(chatpage.Config{ListenAddr: cfg.ListenAddr}, client, log.Named("chatpage"))
	if err != nil {
		return fmt.Errorf("could not create chat page: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- page.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("chat page server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return page.Shutdown(shutdownCtx)
}
