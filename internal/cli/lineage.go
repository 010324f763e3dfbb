package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/lineage"
	"github.com/roach88/statetree/internal/value"
)

// LineageResult lists the paths whose cached reads a write at Path invalidates.
type LineageResult struct {
	Path    string   `json:"path"`
	Exists  bool     `json:"exists"`
	Lineage []string `json:"lineage"`
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineage <document> <path>",
		Short: "Show the lineage of a path in a document",
		Long: `Show the lineage of a path within a JSON or YAML document: its
ancestors (root first), the path itself, and every path below it.

The path is given in its canonical encoding, a JSON array of keys
where strings address object fields and integers address array
elements. The root is [].

Examples:
  statetree lineage ./state.json '["user","name"]'
  statetree lineage ./state.yaml '["items",0]' --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runLineage(opts *RootOptions, file, encoded string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := loadDocument(file)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}
	c, err := engine.New(doc, engine.WithLogger(opts.logger(cmd.ErrOrStderr())))
	if err != nil {
		_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
		return WrapExitError(ExitCommandError, "document is not admissible", err)
	}

	p, err := c.Paths().Parse(encoded)
	if err != nil {
		_ = formatter.Error(ErrCodePath, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid path", err)
	}

	// A missing path still has ancestors; it just has no descendants.
	var v value.Value
	exists := true
	if v, err = c.Get(p); err != nil {
		if !engine.IsPathNotFound(err) {
			_ = formatter.Error(ErrCodePath, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to resolve path", err)
		}
		exists = false
	}

	result := LineageResult{Path: p.String(), Exists: exists}
	for _, lp := range lineage.Compute(p, v) {
		result.Lineage = append(result.Lineage, lp.String())
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	if !exists {
		fmt.Fprintf(w, "%s does not exist in %s\n", result.Path, file)
	}
	for _, lp := range result.Lineage {
		fmt.Fprintln(w, lp)
	}
	return nil
}
