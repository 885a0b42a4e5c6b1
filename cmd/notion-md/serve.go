package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgonek/notion-md/config"
	"github.com/rgonek/notion-md/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  NOTION_TOKEN=secret_xxx notion-md serve

  # HTTP mode
  notion-md serve --http 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return err
	}

	client, err := newNotionClient()
	if err != nil {
		return err
	}

	server, err := mcpserver.NewServer(&mcpserver.Ports{
		Writer:   client,
		Reader:   client,
		Searcher: client,
	}, mcpserver.Options{
		MaxChars:             cfg.Projection.MaxChars,
		PreviewChars:         cfg.Projection.PreviewChars,
		ValidateBeforeDelete: cfg.Rewrite.ValidateBeforeDelete,
		Logger:               logger,
	})
	if err != nil {
		return err
	}

	if addr == "" && cfg.Server.Transport == config.TransportHTTP {
		addr = cfg.Server.Addr
	}
	if addr != "" {
		return server.RunHTTP(cmd.Context(), addr)
	}

	logger.Info("mcp stdio transport ready", zap.String("version", version))
	return server.Run(cmd.Context())
}
