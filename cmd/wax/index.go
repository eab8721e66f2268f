package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/index"
)

func indexCmd() *cobra.Command {
	var flags fileFlags
	var root string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan the exports root and index every chat export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if root != "" {
				cfg.ExportsRoot = root
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.ExportsRoot)

			stats, err := index.IndexAll(db, cfg.ExportsRoot, parseOptions(cmd, cfg, flags))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&root, "root", "", "Exports root to scan (default: exports_root from config)")

	return cmd
}

// refreshIndex brings the index up to date before a read; failures only warn.
func refreshIndex(cmd *cobra.Command, db *index.DB, cfg *config.Config) {
	opts := parseOptions(cmd, cfg, fileFlags{})
	if _, err := index.IndexAll(db, cfg.ExportsRoot, opts); err != nil {
		zerolog.Ctx(cmd.Context()).Warn().Err(err).Msg("refresh index")
	}
}
