package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kalimati/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:           "kalimati",
		Short:         "Merge, clean and store Kalimati market commodity prices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath string
	cnf        *config.Config
	logger     *slog.Logger
)

func Execute() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yml", "path to the YAML config")
	cobra.OnInitialize(initConfig, initLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(mergeCmd, importCmd, fetchCmd, serveCmd, latestCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	cnf = config.MustLoad(configPath)
}

func initLogger() {
	opts := &slog.HandlerOptions{Level: cnf.Logger.ParsedSlogLevel}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
