package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/parse"
)

// tsvField keeps one value on one TSV line.
func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", `\n`)
}

func parseCmd() *cobra.Command {
	var flags fileFlags
	var participants bool
	var probe int

	cmd := &cobra.Command{
		Use:   "parse <export.txt>",
		Short: "Parse a chat export and print its messages as TSV",
		Long: `Parse a plain-text chat export. Output is one TSV line per message:
  sourceLine, timestamp, user, type, text, attachments

Line breaks inside a message are printed as \n and attachments are joined
with ", ".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts := parseOptions(cmd, cfg, flags)

			if probe > 0 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				text, _, err := parse.DecodeOptions(data, opts)
				if err != nil {
					return err
				}
				for _, p := range parse.Probe(text, probe) {
					fmt.Printf("%d\t%s\n", p.Line, p)
				}
				return nil
			}

			res, err := parse.ParseExport(args[0], "", opts)
			if err != nil {
				return err
			}

			if participants {
				for _, p := range parse.Participants(res.Messages) {
					fmt.Printf("%s\t%s\t%d\n", tsvField(p.Name), p.Kind, p.Messages)
				}
				return nil
			}

			for _, m := range res.Messages {
				fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\n",
					m.SourceLine,
					tsvField(m.Timestamp),
					tsvField(m.User),
					m.Type,
					tsvField(m.Text),
					tsvField(strings.Join(m.Attachments, ", ")),
				)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&participants, "participants", false, "List authors (number or contact) instead of messages")
	cmd.Flags().IntVar(&probe, "probe", 0, "Show which grammar the first N lines match, then exit")

	return cmd
}
