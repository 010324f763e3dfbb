package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string // optional CUE schema file
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check that a document can be stored",
		Long: `Check that a JSON or YAML document is admissible as container state,
and optionally that it conforms to a CUE schema.

With --schema, the document is checked against the schema's #State
definition when it declares one, otherwise against the whole schema.

Exit codes:
  0 - Document valid
  1 - Document does not match the schema
  2 - Command error (unreadable document, schema does not compile)

Examples:
  statetree validate ./state.json
  statetree validate ./state.yaml --schema ./state.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema file")

	return cmd
}

func runValidate(opts *ValidateOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := loadDocument(file)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}

	// Admission runs the same clone a container applies to its initial state.
	c, err := engine.New(doc, engine.WithLogger(opts.logger(cmd.ErrOrStderr())))
	if err != nil {
		_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
		return WrapExitError(ExitFailure, "document is not admissible", err)
	}

	result := ValidationResult{Valid: true}
	if opts.Schema != "" {
		src, err := os.ReadFile(opts.Schema)
		if err != nil {
			_ = formatter.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read schema", err)
		}
		s, err := schema.Compile(opts.Schema, string(src))
		if err != nil {
			_ = formatter.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to compile schema", err)
		}
		formatter.VerboseLog("validating %s against %s", file, opts.Schema)
		result.Errors = s.Validate(c.Snapshot())
		result.Valid = len(result.Errors) == 0
	}

	if !result.Valid {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeValidation, "document does not match schema", result.Errors)
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✗ %s does not match %s\n", file, opts.Schema)
			for _, e := range result.Errors {
				if e.Line > 0 {
					fmt.Fprintf(w, "  %s (line %d)\n", e.Error(), e.Line)
				} else {
					fmt.Fprintf(w, "  %s\n", e.Error())
				}
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %s is valid", file))
}
