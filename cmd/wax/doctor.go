package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wax/internal/config"
	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/parse"
	"github.com/Zuo-Peng/wax/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, exports root, encodings, DB and FTS5",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			if p := os.Getenv(config.EnvPath); p != "" {
				fmt.Printf("  File: %s (from %s)\n", p, config.EnvPath)
			}
			checkDir("Exports root", cfg.ExportsRoot)
			if cfg.MediaDir != "" {
				checkDir("Media dir", cfg.MediaDir)
			}
			checkEncoding("Forced encoding", cfg.Encoding)
			for _, name := range cfg.FallbackEncodings {
				checkEncoding("Fallback", name)
			}

			fmt.Println("\n=== File Scan ===")
			files, err := scan.ScanRoot(cfg.ExportsRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Export files: %d\n", len(files))
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wax index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			exportCount, err := db.ExportCount()
			if err != nil {
				return fmt.Errorf("count exports: %w", err)
			}

			messageCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Exports:  %d\n", exportCount)
			fmt.Printf("  Messages: %d\n", messageCount)

			exports, err := db.ListExports()
			if err == nil {
				for _, e := range exports {
					if e.MessageCount == 0 {
						fmt.Printf("  WARN: %s parsed zero messages (try 'wax parse --probe 3 %s')\n", e.ExportKey, e.FilePath)
					}
				}
			}

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == messageCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", messageCount, ftsCount)
				}
			}

			// check DB file size
			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}

func checkEncoding(label, name string) {
	if name == "" {
		return
	}
	if _, err := parse.LookupCharset(name); err != nil {
		fmt.Printf("  %s: %s (UNKNOWN)\n", label, name)
		return
	}
	fmt.Printf("  %s: %s (OK)\n", label, name)
}
