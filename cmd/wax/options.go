package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/parse"
)

// fileFlags are shared by the commands that read one export directly.
type fileFlags struct {
	encoding string
	mediaDir string
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Force the input encoding (e.g. iso-8859-1) instead of detecting it")
	cmd.Flags().StringVar(&f.mediaDir, "media-dir", "", "Directory holding attachments (default: the export's directory)")
}

// parseOptions layers command-line flags over the config file.
func parseOptions(cmd *cobra.Command, cfg *config.Config, f fileFlags) parse.Options {
	opts := parse.Options{
		Encoding:  cfg.Encoding,
		Fallbacks: cfg.FallbackEncodings,
		MediaDir:  cfg.MediaDir,
		Logger:    zerolog.Ctx(cmd.Context()),
	}
	if f.encoding != "" {
		opts.Encoding = f.encoding
	}
	if f.mediaDir != "" {
		opts.MediaDir = f.mediaDir
	}
	return opts
}
