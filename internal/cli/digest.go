package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"
	"arcutil/internal/adapter/fs"
	"arcutil/internal/adapter/source"
)

var digestCmd = &cobra.Command{
	Use:   "digest [file|-]",
	Short: "Print the blake3 digest and size of a file",
	Long: `Read a file (or standard input when the argument is "-" or missing)
into memory and print its blake3 digest, size and name, the same digest the
manifest records for packed files.

Examples:
  arcutil digest build/app.bin
  cat build/app.bin | arcutil digest -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}

	var src any = cmd.InOrStdin()
	if name != "-" {
		src = fs.LazyOpen(name)
	} else if cmd.InOrStdin() == io.Reader(os.Stdin) && !stdinIsPipe() {
		return errors.New("no input: pass a file or pipe data on stdin")
	}

	v, err := source.Normalize(src)
	if err != nil {
		return err
	}
	buf, err := source.CollectValue(v)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	sum := blake3.Sum256(buf)
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %d  %s\n", hex.EncodeToString(sum[:]), len(buf), name)
	return nil
}

// stdinIsPipe reports whether standard input is redirected.
func stdinIsPipe() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
