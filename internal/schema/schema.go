// Package schema validates state trees against CUE schemas.
//
// A schema is CUE source. If it declares a #State definition, values are
// checked against #State (closed: unknown fields are errors); otherwise
// against the whole file. Values are unified through their ordered JSON
// encoding, so big integers and blobs appear in their tagged forms
// ({"$bigint": "..."} and {"$blob": {...}}).
package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/statetree/internal/value"
)

// RootDefinition is the definition values are checked against when present.
const RootDefinition = "#State"

// Schema is a compiled CUE schema.
type Schema struct {
	ctx  *cue.Context
	root cue.Value
}

// CompileError reports a schema that does not compile.
type CompileError struct {
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// ValidationError is one mismatch between a value and the schema.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Compile compiles CUE source. filename is used in error positions.
func Compile(filename, src string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v
	if def := v.LookupPath(cue.ParsePath(RootDefinition)); def.Exists() {
		root = def
	}
	return &Schema{ctx: ctx, root: root}, nil
}

// MustCompile is like Compile but panics on error. For tests and constants.
func MustCompile(filename, src string) *Schema {
	s, err := Compile(filename, src)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks v against the schema and returns every mismatch found.
// A nil result means v conforms.
func (s *Schema) Validate(v value.Value) []ValidationError {
	data, err := value.Marshal(v)
	if err != nil {
		return []ValidationError{{Message: err.Error()}}
	}

	dv := s.ctx.CompileBytes(data, cue.Filename("value.json"))
	if err := dv.Err(); err != nil {
		return []ValidationError{{Message: err.Error()}}
	}

	unified := s.root.Unify(dv)
	err = unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var out []ValidationError
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error()})
	}
	return out
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
