package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"arcutil/internal/adapter/fs"
	"arcutil/internal/domain"
	"arcutil/internal/usecase"
)

var (
	walkBase   string
	walkFormat string
	walkAll    bool
)

var walkCmd = &cobra.Command{
	Use:   "walk [path...]",
	Short: "List the entries below one or more directories",
	Long: `Walk directories depth first and print every entry in pre-order: a
directory is always printed before its contents. Entries are filtered by the
configured include/exclude patterns unless --all is given.

Examples:
  arcutil walk .
  arcutil walk --format json src
  arcutil walk --base . src/api src/web`,
	RunE: runWalk,
}

func init() {
	rootCmd.AddCommand(walkCmd)
	walkCmd.Flags().StringVar(&walkBase, "base", "", "base path for relative names (default: each root)")
	walkCmd.Flags().StringVarP(&walkFormat, "format", "f", "text", "output format: text, json, yaml")
	walkCmd.Flags().BoolVar(&walkAll, "all", false, "ignore include/exclude patterns")
}

type walkOutput struct {
	Path     string `json:"path" yaml:"path"`
	Relative string `json:"relative" yaml:"relative"`
	Dir      bool   `json:"dir" yaml:"dir"`
	Size     int64  `json:"size" yaml:"size"`
	Mode     string `json:"mode" yaml:"mode"`
}

func runWalk(cmd *cobra.Command, args []string) error {
	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	base := walkBase
	if base != "" {
		if base, err = filepath.Abs(base); err != nil {
			return fmt.Errorf("invalid base: %w", err)
		}
	}

	var filter *fs.Filter
	if !walkAll {
		filter = fs.NewFilter(cfg.Walk.Includes, cfg.Walk.Excludes)
	}

	listUC := usecase.NewListUseCase(fs.NewWalker(fs.OSFS{}), filter, GetLogger())
	listed, err := listUC.List(roots, base)
	if err != nil {
		return err
	}

	var out []walkOutput
	for _, r := range listed {
		for _, e := range r.Entries {
			out = append(out, toWalkOutput(e))
		}
	}

	return writeWalk(cmd.OutOrStdout(), walkFormat, out)
}

func toWalkOutput(e domain.WalkEntry) walkOutput {
	o := walkOutput{
		Path:     e.Path,
		Relative: e.RelativePath,
		Dir:      e.IsDir,
		Mode:     e.Info.Mode().String(),
	}
	if !e.IsDir {
		o.Size = e.Info.Size()
	}
	return o
}

func writeWalk(w io.Writer, format string, out []walkOutput) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	case "text":
		for _, o := range out {
			kind := "f"
			if o.Dir {
				kind = "d"
			}
			if _, err := fmt.Fprintf(w, "%s %10d %s\n", kind, o.Size, o.Relative); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// resolveRoots turns arguments into absolute directories, defaulting to the
// root directory.
func resolveRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{GetRootDir()}, nil
	}
	roots := make([]string, len(args))
	for i, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		roots[i] = abs
	}
	return roots, nil
}
