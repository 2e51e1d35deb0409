package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"script-designer/api/internal/script"
)

var normalizeFlags struct {
	file    string
	set     bool
	breadth string
	depth   string
	persona string
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a raw model reply and print the resulting JSON",
	Long: `Reads a raw model reply from --file (or stdin) and prints the repaired
question (or question set with --set). Controls given as flags are forced on
the result; unset controls come from the reply itself.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, normalizeFlags.file)
		if err != nil {
			return err
		}
		var depth script.Depth
		if normalizeFlags.depth != "" {
			d, ok := script.ParseDepth(normalizeFlags.depth)
			if !ok {
				return fmt.Errorf("unknown depth %q", normalizeFlags.depth)
			}
			depth = d
		}
		o, err := script.ParseOverrides(normalizeFlags.breadth, depth, normalizeFlags.persona)
		if err != nil {
			return err
		}

		norm := script.NewNormalizer(script.WithLogger(log))
		var out any
		if normalizeFlags.set {
			out, err = norm.QuestionSet(raw, o)
		} else {
			out, err = norm.Question(raw, o)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	f := normalizeCmd.Flags()
	f.StringVarP(&normalizeFlags.file, "file", "f", "", "reply file (default stdin)")
	f.BoolVar(&normalizeFlags.set, "set", false, `expect {"questions": [...]}`)
	f.StringVar(&normalizeFlags.breadth, "breadth", "", "Low, Medium or High")
	f.StringVar(&normalizeFlags.depth, "depth", "", "1, 2 or 3")
	f.StringVar(&normalizeFlags.persona, "persona", "", "Evidence-first, Why-How, Metrics-driven or Storytelling")
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
