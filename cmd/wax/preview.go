package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/parse"
	"github.com/Zuo-Peng/wax/internal/render"
)

func previewCmd() *cobra.Command {
	var flags fileFlags
	var hitMsgID, context, width int
	var query string
	var file bool

	cmd := &cobra.Command{
		Use:   "preview <exportKey | export.txt>",
		Short: "Preview a conversation with context around a hit",
		Long: `Render an indexed export around message --hit. With --file the argument is
an export file, parsed on the fly without touching the index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ropts := render.Options{
				HitMsgID: hitMsgID,
				Context:  context,
				Width:    width,
				Query:    query,
				MediaDir: flags.mediaDir,
				NoColor:  !term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("FORCE_COLOR") == "",
			}

			if file {
				res, err := parse.ParseExport(args[0], "", parseOptions(cmd, cfg, flags))
				if err != nil {
					return err
				}
				out, _ := render.Render(render.Header{
					Key:      res.Meta.ExportKey,
					ChatName: res.Meta.ChatName,
					MediaDir: res.Meta.MediaDir,
				}, render.Window{Messages: res.Messages, HitIdx: hitMsgID}, ropts)
				fmt.Print(out)
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], ropts)
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&file, "file", false, "Treat the argument as an export file")

	return cmd
}
