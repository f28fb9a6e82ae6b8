package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pwmcp "github.com/ppiankov/protectwatch/internal/mcp"
	"github.com/ppiankov/protectwatch/internal/metrics"
)

var (
	mcpWatch       bool
	mcpMetricsAddr string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", true, "Reload the catalog when its file changes")
	mcpCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address (e.g. :9464)")
	addRegistryFlags(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs protectwatch as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes scoring tools: catalog, risk, verify_license, officer, team, venue.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := pwmcp.Config{
		CatalogPath:   catalogPath,
		Watch:         mcpWatch,
		LookupTimeout: registryTimeout,
		Registry:      newRegistry(),
		Logger:        logger,
	}

	srv, err := pwmcp.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if mcpMetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, mcpMetricsAddr, logger); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	fmt.Fprintln(os.Stderr, "protectwatch MCP server running on stdio")
	err = srv.Run(ctx)
	fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
	return err
}
