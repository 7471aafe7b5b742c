package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/vaquejada/senhas/internal/app"
	"github.com/vaquejada/senhas/internal/config"
	"github.com/vaquejada/senhas/internal/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vaquejada:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], ".env")
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Println("vaquejada", version)
		return nil
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	defer appLog.Sync()

	a, err := app.New(appLog, cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLog.Info("Vaquejada starting", "version", version, "payment_url", cfg.PaymentURL)
	return a.Run(ctx, cfg.Addr())
}
