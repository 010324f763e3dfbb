package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
)

// Tagged object keys used to carry non-JSON variants through JSON.
const (
	tagBigInt = "$bigint"
	tagBlob   = "$blob"
)

// Marshal encodes v as JSON. Objects keep insertion order. BigInt encodes as
// {"$bigint":"<decimal>"} and Blob as {"$blob":{"type":...,"data":<base64>}}
// with name and last_modified for file-like blobs. Non-finite numbers are
// rejected.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Object.
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// MarshalJSON implements json.Marshaler for Array.
func (a *Array) MarshalJSON() ([]byte, error) { return Marshal(a) }

// MarshalJSON implements json.Marshaler for Blob.
func (b *Blob) MarshalJSON() ([]byte, error) { return Marshal(b) }

// MarshalJSON implements json.Marshaler for BigInt.
func (b BigInt) MarshalJSON() ([]byte, error) { return Marshal(b) }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func encode(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("cannot encode nil value")
	case Null:
		buf.WriteString("null")
	case String:
		return encodeString(buf, string(val))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("cannot encode non-finite number %v", f)
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case BigInt:
		buf.WriteString(`{"` + tagBigInt + `":"`)
		buf.WriteString(val.String())
		buf.WriteString(`"}`)
	case *Object:
		buf.WriteByte('{')
		for i, k := range val.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, val.fields[k]); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case *Array:
		buf.WriteByte('[')
		for i, item := range val.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Blob:
		buf.WriteString(`{"` + tagBlob + `":{"type":`)
		if err := encodeString(buf, val.mimeType); err != nil {
			return err
		}
		if val.file {
			buf.WriteString(`,"name":`)
			if err := encodeString(buf, val.name); err != nil {
				return err
			}
			buf.WriteString(`,"last_modified":`)
			buf.WriteString(strconv.FormatInt(val.lastModified, 10))
		}
		buf.WriteString(`,"data":"`)
		buf.WriteString(base64.StdEncoding.EncodeToString(val.data))
		buf.WriteString(`"}}`)
	default:
		return fmt.Errorf("unknown value type: %T", v)
	}
	return nil
}

// encodeString writes a JSON string without HTML escaping.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// ParseJSON decodes JSON into a fresh Value, preserving object key order.
// Integer literals outside the exactly representable float range
// (|n| > 2^53) decode to BigInt; the tagged forms written by Marshal decode
// back to BigInt and Blob.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return decodeNumber(t)
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			guard := newKeyGuard(0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				if err := guard.admit(key, nil); err != nil {
					return nil, err
				}
				child, err := decode(dec)
				if err != nil {
					return nil, fmt.Errorf("%q: %w", key, err)
				}
				obj.put(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return untag(obj)
		case '[':
			arr := &Array{}
			for dec.More() {
				child, err := decode(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(arr.items), err)
				}
				arr.items = append(arr.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

const maxSafeInteger = 1 << 53

func decodeNumber(n json.Number) (Value, error) {
	if i, ok := new(big.Int).SetString(n.String(), 10); ok {
		if i.IsInt64() && math.Abs(float64(i.Int64())) <= maxSafeInteger {
			return Number(i.Int64()), nil
		}
		return NewBigInt(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return Number(f), nil
}

// untag turns the single-key tagged objects written by Marshal back into
// their variants. Any other object is returned as is.
func untag(obj *Object) (Value, error) {
	if obj.Len() != 1 {
		return obj, nil
	}
	if raw, ok := obj.fields[tagBigInt]; ok {
		s, ok := raw.(String)
		if !ok {
			return obj, nil
		}
		i, ok := new(big.Int).SetString(string(s), 10)
		if !ok {
			return nil, fmt.Errorf("invalid %s literal %q", tagBigInt, s)
		}
		return NewBigInt(i), nil
	}
	if raw, ok := obj.fields[tagBlob]; ok {
		desc, ok := raw.(*Object)
		if !ok {
			return obj, nil
		}
		return decodeBlob(desc)
	}
	return obj, nil
}

func decodeBlob(desc *Object) (Value, error) {
	data, _ := desc.fields["data"].(String)
	mimeType, _ := desc.fields["type"].(String)
	payload, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", tagBlob, err)
	}
	b := &Blob{data: payload, mimeType: string(mimeType)}
	if name, ok := desc.fields["name"].(String); ok {
		b.name = string(name)
		b.file = true
		if lm, ok := desc.fields["last_modified"].(Number); ok {
			b.lastModified = int64(lm)
		}
	}
	return b, nil
}
