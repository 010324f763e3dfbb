package harness

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/value"
)

func TestIncrement_BigInt(t *testing.T) {
	start := value.BigIntFromInt64(10)

	tests := []struct {
		name    string
		by      value.Value
		want    string
		wantErr bool
	}{
		{name: "default", by: nil, want: "11"},
		{name: "whole number", by: value.Number(5), want: "15"},
		{name: "beyond int64", by: value.Number(1e20), want: "100000000000000000010"},
		{name: "big int", by: value.BigIntFromInt64(-3), want: "7"},
		{name: "fraction", by: value.Number(0.5), wantErr: true},
		{name: "infinity", by: value.Number(math.Inf(1)), wantErr: true},
		{name: "string", by: value.String("1"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := increment(tt.by)(start)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			want, _ := new(big.Int).SetString(tt.want, 10)
			assert.Equal(t, 0, got.(value.BigInt).Int().Cmp(want))
		})
	}
}
