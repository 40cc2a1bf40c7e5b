package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/vitessce/vitcat/internal/catalog"
	"github.com/vitessce/vitcat/internal/config"
	"github.com/vitessce/vitcat/internal/schema"
)

var (
	validateDir   string
	validateWatch bool
)

// errCatalogInvalid is returned when at least one entry fails a check.
var errCatalogInvalid = errors.New("catalog has invalid entries")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog entries against the dataset schema",
	Long: `Check the built-in catalog, plus the catalog files in --dir (or the
configured catalog_dir), against the dataset schema. Components whose grid
rectangles overlap are reported as well.

With --watch, the directory is checked again whenever a file in it changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := validateDir
		if dir == "" {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			dir = cfg.CatalogDir
		}

		if !validateWatch {
			return runValidation(dir, os.Stdout)
		}
		if dir == "" {
			return errors.New("--watch needs a catalog directory")
		}
		return watchValidation(dir, os.Stdout)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the dataset JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(schema.Document())
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", "", "directory of extra catalog files")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-validate when catalog files change")
}

// runValidation loads the catalog and writes one line per entry.
func runValidation(dir string, out io.Writer) error {
	reg, err := catalog.Open(dir)
	if err != nil {
		return err
	}

	failed := 0
	for _, rep := range reg.ValidateAll() {
		if rep.OK() {
			fmt.Fprintf(out, "ok    %s\n", rep.ID)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s\n", rep.ID)
		for _, v := range rep.Result.Errors {
			fmt.Fprintf(out, "      %s\n", v)
		}
		for _, o := range rep.Overlaps {
			fmt.Fprintf(out, "      layout: %s\n", o)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errCatalogInvalid, failed, reg.Len())
	}
	return nil
}

func watchValidation(dir string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	report := func() {
		fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
		if err := runValidation(dir, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	report()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	// Editors emit bursts of events per save; settle before re-checking.
	const settle = 200 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isCatalogFile(ev.Name) {
				pending = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "watch error: %v\n", err)
		case <-pending:
			pending = nil
			report()
		case <-sigChan:
			return nil
		}
	}
}

func isCatalogFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".md":
		return true
	}
	return false
}
