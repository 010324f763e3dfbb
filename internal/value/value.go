package value

import (
	"math/big"
	"time"
)

// Value is a sealed interface representing storable values.
// Only Null, String, Number, BigInt, Bool, *Object, *Array and *Blob
// implement it.
type Value interface {
	storeValue() // Sealed
}

// Null represents an explicit null.
type Null struct{}

func (Null) storeValue() {}

// String represents a string value.
type String string

func (String) storeValue() {}

// Number represents a double precision number.
type Number float64

func (Number) storeValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) storeValue() {}

// BigInt represents an arbitrary-precision integer.
// The wrapped big.Int is never exposed; Int returns a copy.
type BigInt struct {
	n *big.Int
}

func (BigInt) storeValue() {}

// NewBigInt creates a BigInt holding a copy of n.
func NewBigInt(n *big.Int) BigInt {
	if n == nil {
		return BigInt{n: new(big.Int)}
	}
	return BigInt{n: new(big.Int).Set(n)}
}

// BigIntFromInt64 creates a BigInt from an int64.
func BigIntFromInt64(n int64) BigInt {
	return BigInt{n: big.NewInt(n)}
}

// Int returns a copy of the integer.
func (b BigInt) Int() *big.Int {
	if b.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.n)
}

// String returns the decimal representation.
func (b BigInt) String() string {
	if b.n == nil {
		return "0"
	}
	return b.n.String()
}

// Blob is an immutable binary payload with a MIME type.
// A Blob created with NewFile also carries a name and a last-modified
// timestamp in Unix milliseconds.
type Blob struct {
	data         []byte
	mimeType     string
	name         string
	lastModified int64
	file         bool
}

func (*Blob) storeValue() {}

// NewBlob creates a blob holding a copy of data.
func NewBlob(data []byte, mimeType string) *Blob {
	return &Blob{data: copyBytes(data), mimeType: mimeType}
}

// NewFile creates a file-like blob holding a copy of data.
func NewFile(data []byte, mimeType, name string, lastModified time.Time) *Blob {
	return &Blob{
		data:         copyBytes(data),
		mimeType:     mimeType,
		name:         name,
		lastModified: lastModified.UnixMilli(),
		file:         true,
	}
}

// Bytes returns a copy of the payload.
func (b *Blob) Bytes() []byte { return copyBytes(b.data) }

// Size returns the payload length in bytes.
func (b *Blob) Size() int { return len(b.data) }

// Type returns the MIME type.
func (b *Blob) Type() string { return b.mimeType }

// Name returns the file name, or "" for a plain blob.
func (b *Blob) Name() string { return b.name }

// LastModified returns the file timestamp in Unix milliseconds.
func (b *Blob) LastModified() int64 { return b.lastModified }

// IsFile reports whether the blob is file-like.
func (b *Blob) IsFile() bool { return b.file }

func (b *Blob) twin() *Blob {
	return &Blob{
		data:         copyBytes(b.data),
		mimeType:     b.mimeType,
		name:         b.name,
		lastModified: b.lastModified,
		file:         b.file,
	}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
