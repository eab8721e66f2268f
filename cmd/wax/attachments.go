package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/parse"
	"github.com/Zuo-Peng/wax/internal/render"
)

func attachmentsCmd() *cobra.Command {
	var flags fileFlags
	var missingOnly bool

	cmd := &cobra.Command{
		Use:   "attachments <export.txt>",
		Short: "Check every attachment an export mentions against its media directory",
		Long: `List each distinct attachment once, in first-mention order, as TSV:
  FOUND|NOT FOUND, kind, name, resolved path, MIME type`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			res, err := parse.ParseExport(args[0], "", parseOptions(cmd, cfg, flags))
			if err != nil {
				return err
			}

			found, missing := 0, 0
			for _, a := range render.DescribeAll(res.Messages, res.Meta.MediaDir) {
				if a.Found {
					found++
					if !missingOnly {
						fmt.Printf("FOUND\t%s\t%s\t%s\t%s\n", a.Kind, a.Name, a.Path, a.MIME)
					}
					continue
				}
				missing++
				fmt.Printf("NOT FOUND\t%s\t%s\t-\t-\n", a.Kind, a.Name)
			}

			zerolog.Ctx(cmd.Context()).Info().
				Str("media_dir", res.Meta.MediaDir).
				Int("found", found).
				Int("missing", missing).
				Msg("attachments checked")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&missingOnly, "missing", false, "Only list attachments that were not found")

	return cmd
}
