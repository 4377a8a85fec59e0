// Command rsdiff generates and applies BSDIFF40-compatible binary patches.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshuawarner32/rsdiff"
	"github.com/joshuawarner32/rsdiff/internal/index"
)

var (
	verbose  bool
	cacheDir string
	log      zerolog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rsdiff",
		Short: "Generate and apply BSDIFF40-compatible binary patches",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).
				With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory to cache suffix indexes in (disabled if empty)")

	root.AddCommand(newDiffCmd(), newPatchCmd(), newStatCmd())
	return root
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new> <patch>",
		Short: "Compute a patch transforming old into new",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading old file: %w", err)
			}
			newData, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading new file: %w", err)
			}

			idx, err := rsdiff.LoadOrBuild(openCache(), oldData)
			if err != nil {
				return fmt.Errorf("building index: %w", err)
			}

			patchBytes, err := rsdiff.GenerateFullPatch(idx, newData)
			if err != nil {
				return fmt.Errorf("generating patch: %w", err)
			}

			log.Info().
				Int("old_bytes", len(oldData)).
				Int("new_bytes", len(newData)).
				Int("patch_bytes", len(patchBytes)).
				Msg("diff complete")

			return os.WriteFile(args[2], patchBytes, 0o644)
		},
	}
}

func newPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patch <old> <patch> <new>",
		Short: "Apply a patch to old, writing the result to new",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldFile, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening old file: %w", err)
			}
			defer oldFile.Close()

			patchBytes, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading patch file: %w", err)
			}

			newFile, err := os.Create(args[2])
			if err != nil {
				return fmt.Errorf("creating new file: %w", err)
			}
			defer newFile.Close()

			if err := rsdiff.Apply(patchBytes, oldFile, newFile); err != nil {
				return fmt.Errorf("applying patch: %w", err)
			}

			log.Info().Str("new_file", args[2]).Msg("patch applied")

			return nil
		},
	}
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <old> <new>",
		Short: "Report diff coverage between old and new without writing a patch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading old file: %w", err)
			}
			newData, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading new file: %w", err)
			}

			idx, err := rsdiff.LoadOrBuild(openCache(), oldData)
			if err != nil {
				return fmt.Errorf("building index: %w", err)
			}

			stat := rsdiff.Stat(idx, newData)
			fmt.Printf("matches: %d\nmatched bytes: %d\nliteral bytes: %d\nold size: %d\nnew size: %d\n",
				stat.MatchCount, stat.MatchedBytes, stat.LiteralBytes, stat.OldBytes, stat.NewBytes)
			return nil
		},
	}
}

func openCache() rsdiff.Cache {
	if cacheDir == "" {
		return nil
	}
	return index.NewFileCache(cacheDir)
}
