package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/search"
	"github.com/Zuo-Peng/wax/internal/tui"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all indexed chats sorted by last activity",
		Long:  `Opens a TUI panel showing all indexed chats, most recently active first. Type to filter by chat name. When stdout is not a terminal, prints TSV instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			refreshIndex(cmd, db, cfg)

			opts := search.Options{
				Since: since,
				Limit: limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, opts)
			}

			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t%s\t%s\t%s\n", r.ExportKey, tsvField(r.Ts), tsvField(r.ChatName), tsvField(r.Snippet))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only chats active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
