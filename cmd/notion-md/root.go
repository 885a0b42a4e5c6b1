package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgonek/notion-md/config"
	"github.com/rgonek/notion-md/logging"
	"github.com/rgonek/notion-md/notion"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "notion-md",
	Short: "Convert between Markdown and Notion blocks",
	Long: `notion-md converts GitHub flavored Markdown into Notion blocks and back.

It runs as an MCP server exposing page read and write tools, or as a
one-shot converter for local files.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug|info|warn|error")
}

func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}

	built, err := logging.New(logging.Config{Level: loaded.Logging.Level, Format: loaded.Logging.Format})
	if err != nil {
		return err
	}

	cfg = loaded
	logger = built
	return nil
}

// newNotionClient builds an API client from the loaded config.
func newNotionClient() (*notion.Client, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	client, err := notion.NewClient(cfg.Notion.Token, notion.Options{
		RateLimit: notion.RateLimitConfig{
			RequestsPerSecond: cfg.Notion.RequestsPerSecond,
			BurstSize:         cfg.Notion.Burst,
		},
		Retries:   cfg.Notion.Retries,
		ReadDepth: cfg.Notion.ReadDepth,
		Logger:    logger.Named("notion"),
	})
	if err != nil {
		return nil, fmt.Errorf("notion client: %w", err)
	}
	return client, nil
}
