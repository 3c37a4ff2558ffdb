// Package cli implements the acta command line interface.
// It wires the in-memory stores, the upstream client and the core
// services, and exposes them through cobra commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta-mcp/internal/adapters/driven/config/file"
	"github.com/acta-dev/acta-mcp/internal/adapters/driven/storage/memory"
	"github.com/acta-dev/acta-mcp/internal/adapters/driven/upstream/eli"
	"github.com/acta-dev/acta-mcp/internal/cache"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
	"github.com/acta-dev/acta-mcp/internal/core/services"
	"github.com/acta-dev/acta-mcp/internal/indexer/markdown"
	"github.com/acta-dev/acta-mcp/internal/logger"
	"github.com/acta-dev/acta-mcp/internal/resilience"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var (
	configPath string
	verbose    bool
)

// Services shared by the commands, wired on first use.
var (
	actService      driving.ActService
	documentService driving.DocumentService
)

var rootCmd = &cobra.Command{
	Use:   "acta",
	Short: "Search and read Polish legal acts",
	Long: `Acta is an MCP server and CLI for the Polish ELI legal act API.

It searches act metadata, keeps query results as filterable result sets,
and loads act texts into memory for section-level reading and search.
All state is held in memory; nothing is persisted between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.acta/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

// initServices builds the service graph from the settings file.
// Tests inject mock services beforehand, which skips the wiring.
func initServices() error {
	if actService != nil && documentService != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = file.DefaultPath(); err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}
	settings, err := file.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("settings loaded from %s", path)

	responseCache, err := cache.New[[]byte](settings.Upstream.CacheCapacity)
	if err != nil {
		return err
	}

	client, err := eli.NewClient(responseCache, resilience.Config{
		FailureThreshold: settings.Breaker.FailureThreshold,
		RecoveryTimeout:  settings.Breaker.RecoveryTimeout(),
		HalfOpenMaxCalls: settings.Breaker.HalfOpenMaxCalls,
	}, eli.Config{
		BaseURL:   settings.Upstream.BaseURL,
		Timeout:   settings.Upstream.Timeout(),
		SearchTTL: settings.Upstream.SearchTTL(),
		BrowseTTL: settings.Upstream.BrowseTTL(),
		TextTTL:   settings.Upstream.TextTTL(),
	})
	if err != nil {
		return err
	}

	docStore, err := memory.NewDocumentStore(memory.DocStoreConfig{
		MaxDocuments:     settings.Documents.MaxDocuments,
		MaxTotalBytes:    settings.Documents.MaxTotalBytes,
		MaxDocumentBytes: settings.Documents.MaxDocumentBytes,
		TTL:              settings.Documents.TTL(),
	}, markdown.New())
	if err != nil {
		return err
	}

	resultStore, err := memory.NewResultStore(memory.ResultStoreConfig{
		MaxSets: settings.Results.MaxSets,
		TTL:     settings.Results.TTL(),
	})
	if err != nil {
		return err
	}

	actService = services.NewActService(client, resultStore)
	documentService = services.NewDocumentService(client, docStore)
	return nil
}
