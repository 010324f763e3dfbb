package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/value"
)

const counterSchema = `
#State: {
	count: int & >=0
	label?: string
	tags: [...string]
}
`

func TestValidate_Conforming(t *testing.T) {
	s := MustCompile("counter.cue", counterSchema)

	v := value.ObjectOf(
		value.P("count", value.Number(3)),
		value.P("tags", value.NewArray(value.String("a"))),
	)
	assert.Empty(t, s.Validate(v))
}

func TestValidate_ReportsMismatches(t *testing.T) {
	s := MustCompile("counter.cue", counterSchema)

	v := value.ObjectOf(
		value.P("count", value.Number(-1)),
		value.P("tags", value.NewArray(value.Number(1))),
	)
	errs := s.Validate(v)
	require.NotEmpty(t, errs)

	found := false
	for _, e := range errs {
		assert.NotEmpty(t, e.Message)
		if strings.HasSuffix(e.Path, "count") {
			found = true
		}
	}
	assert.True(t, found, "expected an error at count, got %v", errs)
}

func TestValidate_DefinitionIsClosed(t *testing.T) {
	s := MustCompile("counter.cue", counterSchema)

	v := value.ObjectOf(
		value.P("count", value.Number(1)),
		value.P("tags", value.NewArray()),
		value.P("extra", value.Bool(true)),
	)
	assert.NotEmpty(t, s.Validate(v))
}

func TestValidate_WholeFileWithoutDefinition(t *testing.T) {
	s := MustCompile("loose.cue", `name: string`)

	assert.Empty(t, s.Validate(value.ObjectOf(value.P("name", value.String("x")))))
	assert.NotEmpty(t, s.Validate(value.ObjectOf(value.P("name", value.Number(1)))))
}

func TestValidate_TaggedBigInt(t *testing.T) {
	s := MustCompile("big.cue", `#State: { n: { "$bigint": =~"^[0-9]+$" } }`)

	v := value.ObjectOf(value.P("n", value.BigIntFromInt64(12)))
	assert.Empty(t, s.Validate(v))
}

func TestCompile_Error(t *testing.T) {
	_, err := Compile("broken.cue", `a: {`)
	require.Error(t, err)

	var ce *CompileError
	if assert.ErrorAs(t, err, &ce) {
		assert.Contains(t, ce.Error(), "broken.cue")
	}
}
