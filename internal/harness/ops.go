package harness

import (
	"fmt"
	"math"
	"math/big"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/value"
)

// updater builds the engine updater for an update step. operand is nil
// when the step has no value.
func updater(op string, operand value.Value) (engine.Updater, error) {
	switch op {
	case OpIncrement:
		return increment(operand), nil
	case OpAppend:
		return func(cur value.Value) (value.Value, error) {
			arr, ok := cur.(*value.Array)
			if !ok {
				return nil, fmt.Errorf("append: target is %s, not an array", value.Classify(cur))
			}
			return nil, arr.Append(operand)
		}, nil
	case OpMerge:
		return func(cur value.Value) (value.Value, error) {
			obj, ok := cur.(*value.Object)
			if !ok {
				return nil, fmt.Errorf("merge: target is %s, not an object", value.Classify(cur))
			}
			src, ok := operand.(*value.Object)
			if !ok {
				return nil, fmt.Errorf("merge: operand is %s, not an object", value.Classify(operand))
			}
			var err error
			src.Range(func(k string, v value.Value) bool {
				err = obj.Set(k, v)
				return err == nil
			})
			return nil, err
		}, nil
	case OpReplace:
		return func(value.Value) (value.Value, error) {
			return operand, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", op)
	}
}

// increment adds by (default 1) to a number or big integer.
func increment(by value.Value) engine.Updater {
	return func(cur value.Value) (value.Value, error) {
		switch n := cur.(type) {
		case value.Number:
			switch d := by.(type) {
			case nil:
				return n + 1, nil
			case value.Number:
				return n + d, nil
			}
		case value.BigInt:
			sum := n.Int()
			switch d := by.(type) {
			case nil:
				sum.Add(sum, big.NewInt(1))
			case value.Number:
				delta, err := integral(d)
				if err != nil {
					return nil, err
				}
				sum.Add(sum, delta)
			case value.BigInt:
				sum.Add(sum, d.Int())
			default:
				return nil, fmt.Errorf("increment: operand is %s, not a number", value.Classify(by))
			}
			return value.NewBigInt(sum), nil
		default:
			return nil, fmt.Errorf("increment: target is %s, not a number", value.Classify(cur))
		}
		return nil, fmt.Errorf("increment: operand is %s, not a number", value.Classify(by))
	}
}

// integral converts a whole Number to a big integer. Fractional and
// non-finite numbers are rejected.
func integral(n value.Number) (*big.Int, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("increment: big integer operand %v is not a whole number", f)
	}
	i, _ := big.NewFloat(f).Int(nil)
	return i, nil
}
