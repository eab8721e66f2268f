package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/export"
	"github.com/Zuo-Peng/wax/internal/parse"
)

func exportCmd() *cobra.Command {
	var flags fileFlags
	var output, delimiter string
	var noHeader, crlf bool

	cmd := &cobra.Command{
		Use:   "export <export.txt>",
		Short: "Write a chat export as CSV (timestamp, user, text, attachments, type, source_line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			comma, size := utf8.DecodeRuneInString(delimiter)
			if size == 0 || size != len(delimiter) {
				return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
			}

			res, err := parse.ParseExport(args[0], "", parseOptions(cmd, cfg, flags))
			if err != nil {
				return err
			}

			err = writeOutput(output, func(w io.Writer) error {
				return export.WriteCSV(w, res.Messages, export.Options{
					Comma:    comma,
					NoHeader: noHeader,
					UseCRLF:  crlf,
				})
			})
			if err != nil {
				return fmt.Errorf("write csv: %w", err)
			}

			zerolog.Ctx(cmd.Context()).Info().
				Int("messages", len(res.Messages)).
				Str("output", output).
				Msg("exported")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header row")
	cmd.Flags().BoolVar(&crlf, "crlf", false, "End records with CRLF")

	return cmd
}

// writeOutput runs write against path, or stdout when path is empty or "-".
// A file is closed before returning and its close error is reported.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
