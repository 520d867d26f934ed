package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrUnavailable marks failures to reach the backing store. Callers match it
	// with errors.Is to tell transport problems apart from bad requests.
	ErrUnavailable = errors.New("document store unavailable")

	// ErrInvalidKey is returned when a document key is empty.
	ErrInvalidKey = errors.New("document key is empty")

	// ErrUnsupportedValue is returned when a field value cannot be stored.
	ErrUnsupportedValue = errors.New("unsupported field value")
)

// Store is the minimal keyed document store the inventory runs on.
type Store interface {
	// ListAll returns every document in the collection in store order.
	ListAll(ctx context.Context, collection string) ([]Document, error)
	// GetOne returns the document under key. found is false when it does not exist.
	GetOne(ctx context.Context, collection, key string) (doc Document, found bool, err error)
	// SetOne writes fields under key. With merge, fields absent from the write
	// keep their stored values; without it the document is replaced.
	SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error
	// DeleteOne removes the document. Deleting a missing key is not an error.
	DeleteOne(ctx context.Context, collection, key string) error
	// Close releases connections held by the store.
	Close() error
}

// Document is a keyed field map.
type Document struct {
	Key    string
	Fields Fields
}

// Fields holds document values. Stored values are normalized to string,
// int64, float64 or bool.
type Fields map[string]any

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	dup := make(Fields, len(f))
	for k, v := range f {
		dup[k] = v
	}
	return dup
}

// Int returns the named field as an integer. Whole floats are accepted.
func (f Fields) Int(name string) (int64, bool) {
	switch v := f[name].(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v <= math.MaxInt64 {
			return int64(v), true
		}
	}
	return 0, false
}

// String returns the named field when it holds a string.
func (f Fields) String(name string) (string, bool) {
	s, ok := f[name].(string)
	return s, ok
}

// Normalize converts supported Go values to their stored representation.
func Normalize(fields Fields) (Fields, error) {
	out := make(Fields, len(fields))
	for name, value := range fields {
		v, err := normalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
		}
		return int64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedValue, v.String())
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

func encodeFields(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return Normalize(raw)
}

func decodeValue(data string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return normalizeValue(raw)
}

func unavailable(backend, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, backend, op, err)
}
