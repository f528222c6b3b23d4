package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/notesite/internal/config"
	"github.com/dgallion1/notesite/internal/pipeline"
	"github.com/dgallion1/notesite/internal/preview"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "notesite",
	Short:   "Build a navigable site from a directory of notes",
	Long:    "notesite parses note files, merges duplicated sections across them, and renders a cross-linked, syntax-highlighted static site.",
	Version: version,
}

var buildCmd = &cobra.Command{
	Use:   "build <input-dir> <output-dir>",
	Short: "Build the site once",
	Args:  cobra.ExactArgs(2),
	RunE:  runBuild,
}

var serveCmd = &cobra.Command{
	Use:   "serve <input-dir> <output-dir>",
	Short: "Build the site and serve it locally, rebuilding on change",
	Args:  cobra.ExactArgs(2),
	RunE:  runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().String("title", "", "Site title")
	rootCmd.PersistentFlags().Float64("threshold", 0, "Duplicate-section similarity threshold (0..1)")
	rootCmd.PersistentFlags().Int("workers", 0, "Parallel parse workers")
	viper.BindPFlag("site.title", rootCmd.PersistentFlags().Lookup("title"))
	viper.BindPFlag("merge.threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("build.workers", rootCmd.PersistentFlags().Lookup("workers"))

	serveCmd.Flags().String("addr", "", "Listen address")
	serveCmd.Flags().Bool("watch", true, "Rebuild when notes change")
	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.watch", serveCmd.Flags().Lookup("watch"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b := pipeline.NewBuilder(cfg, log)
	if _, err := b.Build(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	inputDir, outputDir := args[0], args[1]

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b := pipeline.NewBuilder(cfg, log)
	if _, err := b.Build(ctx, inputDir, outputDir); err != nil {
		return err
	}

	if cfg.Serve.Watch {
		go func() {
			if err := b.Watch(ctx, inputDir, outputDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("watcher stopped", "error", err)
			}
		}()
	}

	srv := preview.NewServer(outputDir, b.Stats(), log)
	httpServer := &http.Server{
		Addr:         cfg.Serve.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("serving site", "addr", cfg.Serve.Addr, "watch", cfg.Serve.Watch)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
