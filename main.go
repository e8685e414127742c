package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/balikobot/internal/server"
	"github.com/tournevent/balikobot/pkg/shipper"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "balikobot",
	Short:   "Balikobot bridge - submit package batches to Balikobot carriers",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and GraphQL server",
	RunE:  runServe,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a batch of packages from a JSON or YAML file",
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringP("file", "f", "", "batch file (JSON or YAML)")
	addCmd.Flags().StringP("carrier", "c", "", "carrier code, overrides the file")
	addCmd.Flags().String("api-version", "", "API version (v2), overrides the file")
	_ = addCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, addCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	registry := initShipperRegistry(cfg, logger)

	logger.Info("Starting Balikobot bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
		zap.Bool("mock", cfg.BalikobotUseMock),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("file")
	batch, err := readBatchFile(path)
	if err != nil {
		return err
	}
	if carrier, _ := cmd.Flags().GetString("carrier"); carrier != "" {
		batch.Carrier = carrier
	}
	if v, _ := cmd.Flags().GetString("api-version"); v != "" {
		batch.Version = v
	}
	if batch.Carrier == "" {
		return errors.New("carrier is required: set it in the file or with --carrier")
	}

	registry := initShipperRegistry(cfg, logger)
	resp, err := registry.AddPackages(ctx, &shipper.AddPackagesRequest{
		Carrier:  batch.Carrier,
		Version:  batch.Version,
		Packages: batch.Packages,
	})
	if err != nil {
		return fmt.Errorf("adding packages: %w", err)
	}

	out := map[string]any{
		"carrier":  resp.Carrier,
		"packages": resp.Packages,
	}
	if resp.HasLabelsURL {
		out["labels_url"] = resp.LabelsURL
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
