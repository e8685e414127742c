package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tournevent/balikobot/internal/config"
	"github.com/tournevent/balikobot/internal/telemetry"
	"github.com/tournevent/balikobot/pkg/balikobot"
	"github.com/tournevent/balikobot/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func loadConfig() (*config.Config, error) {
	return config.Load(".env")
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

func newBalikobotClient(cfg *config.Config, logger *otelzap.Logger) *balikobot.Client {
	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	return balikobot.New(balikobot.Config{
		APIUser: cfg.BalikobotAPIUser,
		APIKey:  cfg.BalikobotAPIKey,
		BaseURL: cfg.BalikobotBaseURL,
		Timeout: cfg.BalikobotTimeout,
		UseMock: cfg.BalikobotUseMock,
	}, logger, tracer)
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger) *shipper.Registry {
	registry := shipper.NewRegistry()
	client := newBalikobotClient(cfg, logger)

	// One shipper per configured carrier code, all sharing the client.
	for _, code := range cfg.BalikobotCarriers {
		if code == "" {
			continue
		}
		version := balikobot.Version(cfg.CarrierVersion(code))
		registry.Register(balikobot.NewCarrier(client, code, version))
		logger.Debug("Registered carrier", zap.String("carrier", code), zap.String("version", string(version)))
	}

	return registry
}

// batchFile is the on-disk form of a batch for the add command. A file
// holding a bare list is read as the packages.
type batchFile struct {
	Carrier  string                   `yaml:"carrier"`
	Version  string                   `yaml:"version"`
	Packages []shipper.PackageRequest `yaml:"packages"`
}

// readBatchFile parses a JSON or YAML batch file. JSON is valid YAML, so a
// single decoder handles both.
func readBatchFile(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("batch file %s is empty", path)
	}

	var batch batchFile
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		err = root.Decode(&batch.Packages)
	} else {
		err = root.Decode(&batch)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding batch file: %w", err)
	}
	return &batch, nil
}
