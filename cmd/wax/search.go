package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/search"
	"github.com/Zuo-Peng/wax/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var user, msgType, since, chat string
	var limit int
	var plain bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed chat messages",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  exportKey, msgId, timestamp, chat, user, snippet

Recommended shell function (add to .zshrc):
  waxf() {
    wax search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wax preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(wax open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// Auto-update index before searching
			refreshIndex(cmd, db, cfg)

			opts := search.Options{
				ExportKey: chat,
				User:      user,
				Type:      msgType,
				Since:     since,
				Limit:     limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields (exportKey, msgID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s%s%s\t%s%s%s\t%s\n",
					r.ExportKey,
					r.MsgID,
					sColorDim, tsvField(r.Ts), sColorReset,
					sColorBlue, tsvField(r.ChatName), sColorReset,
					sColorGreen, tsvField(r.User), sColorReset,
					colorizeSnippet(strings.ReplaceAll(tsvField(r.Snippet), `\n`, " ")),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "Restrict to one export key")
	cmd.Flags().StringVar(&user, "user", "", "Filter by author (exact name)")
	cmd.Flags().StringVar(&msgType, "type", "", "Filter by type (message/call/deleted/hidden_audio/system)")
	cmd.Flags().StringVar(&since, "since", "", "Filter messages sent since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print TSV even when stdout is a terminal")

	return cmd
}
