package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarweave/jarweave/internal/cache"
	"github.com/jarweave/jarweave/internal/cli/config"
)

// NewCacheCommand creates the cache command group
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the transform cache",
	}

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show transform cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			titleColor.Print("Cached transforms: ")
			fmt.Println(stats.Entries)
			titleColor.Print("Total size: ")
			fmt.Printf("%.1f MiB\n", float64(stats.TotalSize)/(1024*1024))
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached transform outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Println("✓ Transform cache cleared")
			return nil
		},
	}
}

func openStore() (*cache.Store, error) {
	cacheDir := ".jarweave/transforms"
	if cfg, err := config.Load(); err == nil && cfg.Cache.Dir != "" {
		cacheDir = cfg.Cache.Dir
	}
	return cache.NewStore(cacheDir, zap.NewNop())
}
