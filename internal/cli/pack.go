package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"arcutil/config"
	"arcutil/internal/adapter/archive"
	"arcutil/internal/adapter/fs"
	"arcutil/internal/adapter/store"
	"arcutil/internal/domain"
	"arcutil/internal/port"
	"arcutil/internal/usecase"
)

var (
	packOutput      string
	packCompression string
	packChangedOnly bool
	packNoManifest  bool
	packQuiet       bool
)

var packCmd = &cobra.Command{
	Use:   "pack [path...]",
	Short: "Pack directories into a tar archive",
	Long: `Walk the given directories and write every kept entry into a tar
archive, optionally compressed with gzip, zstd or lz4. A manifest of archived
files is kept in .arcutil/manifest.db below the root directory.

Examples:
  arcutil pack -o site.tar.gz public
  arcutil pack -o src.tar.zst --changed-only src`,
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "archive file to write (required)")
	packCmd.Flags().StringVarP(&packCompression, "compression", "c", "", "none, gzip, zstd or lz4 (default from output name, then config)")
	packCmd.Flags().BoolVar(&packChangedOnly, "changed-only", false, "only archive files changed since the last pack")
	packCmd.Flags().BoolVar(&packNoManifest, "no-manifest", false, "do not read or update the manifest")
	packCmd.Flags().BoolVarP(&packQuiet, "quiet", "q", false, "hide the progress bar")
	packCmd.MarkFlagRequired("output")
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("path does not exist: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", root)
		}
	}

	compression, err := pickCompression(packCompression, packOutput, cfg.Pack.Compression)
	if err != nil {
		return err
	}

	var manifest port.ManifestStore
	if cfg.Manifest.Enabled && !packNoManifest {
		st, err := openManifest(GetRootDir(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		manifest = st
	}

	out, err := os.Create(packOutput)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	outInfo, err := out.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	w, err := archive.NewWriter(out, archive.Options{
		Compression: compression,
		Level:       cfg.Pack.Level,
		Prefix:      cfg.Pack.Prefix,
		Date:        cfg.Pack.Date,
	})
	if err != nil {
		return err
	}

	filter := fs.NewFilter(cfg.Walk.Includes, cfg.Walk.Excludes)
	packUC := usecase.NewPackUseCase(fs.NewWalker(fs.OSFS{}), filter, fs.OSFS{}, manifest, log)

	var progress usecase.ProgressFunc
	if !packQuiet {
		progress = newProgress()
	}

	log.Info("packing", "roots", roots, "output", packOutput, "compression", compression.String())

	result, err := packUC.Pack(roots, w, usecase.PackOptions{
		ChangedOnly:      packChangedOnly,
		MaterializeLimit: cfg.Pack.MaterializeLimit,
		// the archive may live inside a walked root
		Skip: func(e domain.WalkEntry) bool { return os.SameFile(e.Info, outInfo) },
	}, progress)
	if err != nil {
		out.Close()
		os.Remove(packOutput)
		return fmt.Errorf("packing failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nPacking complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Files added:     %d\n", result.FilesAdded)
	fmt.Fprintf(cmd.OutOrStdout(), "  Files unchanged: %d\n", result.FilesUnchanged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Files removed:   %d\n", result.FilesRemoved)
	if result.FilesIgnored > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Files ignored:   %d (not regular)\n", result.FilesIgnored)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Directories:     %d\n", result.Directories)
	fmt.Fprintf(cmd.OutOrStdout(), "  Bytes written:   %d\n", result.BytesWritten)
	fmt.Fprintf(cmd.OutOrStdout(), "\nArchive written to: %s\n", packOutput)
	return nil
}

// pickCompression prefers the flag, then the output file name, then config.
func pickCompression(flag, output, configured string) (archive.Compression, error) {
	if flag != "" {
		return archive.ParseCompression(flag)
	}
	if c, ok := archive.CompressionFromName(output); ok {
		return c, nil
	}
	return archive.ParseCompression(configured)
}

func openManifest(dir string, cfg *config.Config) (*store.BoltStore, error) {
	if err := config.EnsureStateDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .arcutil directory: %w", err)
	}

	st, err := store.NewBoltStore(config.ManifestDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	migration, err := st.CheckMigration(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check migration: %w", err)
	}

	if migration.NeedsRebuild {
		GetLogger().Info("manifest rebuild required", "reason", migration.Reason)
		if err := st.Clear(); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to clear manifest: %w", err)
		}
	}
	if migration.NeedsRebuild || migration.NeedsMigration {
		if err := st.Migrate(cfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return st, nil
}

func newProgress() usecase.ProgressFunc {
	var (
		bar *progressbar.ProgressBar
		mu  sync.Mutex
	)

	return func(processed, total int, current string) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Packing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
				progressbar.OptionSetWriter(os.Stderr),
			)
		}

		bar.Set(processed)
	}
}
