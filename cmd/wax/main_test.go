package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wax/internal/config"
)

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"parse", "export", "attachments", "index", "search", "list", "preview", "open", "doctor",
	}, names)
}

func TestTSVField(t *testing.T) {
	assert.Equal(t, `a b\nc`, tsvField("a\tb\nc"))
}

func TestParseOptionsFlagsOverrideConfig(t *testing.T) {
	cmd := &cobra.Command{}
	log := zerolog.Nop()
	cmd.SetContext(log.WithContext(context.Background()))

	cfg := &config.Config{
		Encoding:          "windows-1252",
		FallbackEncodings: []string{"iso-8859-1"},
		MediaDir:          "/cfg/media",
	}

	opts := parseOptions(cmd, cfg, fileFlags{})
	assert.Equal(t, "windows-1252", opts.Encoding)
	assert.Equal(t, []string{"iso-8859-1"}, opts.Fallbacks)
	assert.Equal(t, "/cfg/media", opts.MediaDir)
	assert.NotNil(t, opts.Logger)

	opts = parseOptions(cmd, cfg, fileFlags{encoding: "utf-8", mediaDir: "/flag/media"})
	assert.Equal(t, "utf-8", opts.Encoding)
	assert.Equal(t, "/flag/media", opts.MediaDir)
}

func TestExportCommandWritesCSV(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvPath, filepath.Join(dir, "config.toml"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`db_path = "`+filepath.ToSlash(filepath.Join(dir, "wax.db"))+`"`), 0o644))

	chat := filepath.Join(dir, "chat.txt")
	require.NoError(t, os.WriteFile(chat, []byte("[5/1/2024, 09:30:15] Alice: Hello"), 0o644))
	out := filepath.Join(dir, "out.csv")

	root := rootCmd()
	root.SetArgs([]string{"export", chat, "-o", out, "--log-level", "error"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,user,text,attachments,type,source_line\n2024-01-05 09:30:15,Alice,Hello,,message,1\n", string(data))
}

func TestExportCommandRejectsBadDelimiter(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvPath, filepath.Join(dir, "config.toml"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0o644))

	root := rootCmd()
	root.SetArgs([]string{"export", filepath.Join(dir, "chat.txt"), "--delimiter", ";;"})
	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "single character")
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	require.NoError(t, writeOutput(out, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	boom := errors.New("boom")
	assert.ErrorIs(t, writeOutput(out, func(io.Writer) error { return boom }), boom)

	err = writeOutput(filepath.Join(dir, "missing", "out.csv"), func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "create")
}
