package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMemory_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SetOne(ctx, "inventory", "Egg", Fields{"quantity": 1}, false))

	doc, _, err := m.GetOne(ctx, "inventory", "Egg")
	require.NoError(t, err)
	doc.Fields["quantity"] = int64(99)

	docs, err := m.ListAll(ctx, "inventory")
	require.NoError(t, err)
	docs[0].Fields["category"] = "mutated"

	again, _, err := m.GetOne(ctx, "inventory", "Egg")
	require.NoError(t, err)
	assert.Equal(t, Fields{"quantity": int64(1)}, again.Fields)
}

func TestMemory_CanceledContextIsUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().ListAll(ctx, "inventory")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMemory_ClosedIsUnavailable(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	_, _, err := m.GetOne(context.Background(), "inventory", "Egg")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMemory_RoundTrip_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		m := NewMemory()

		key := rapid.StringMatching(`[A-Za-z0-9 ]{1,30}`).Draw(t, "key")
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,12}`), 0, 6, rapid.ID[string]).Draw(t, "names")
		fields := Fields{}
		for _, name := range names {
			switch rapid.IntRange(0, 2).Draw(t, "kind") {
			case 0:
				fields[name] = rapid.Int64().Draw(t, "int")
			case 1:
				fields[name] = rapid.String().Draw(t, "string")
			default:
				fields[name] = rapid.Bool().Draw(t, "bool")
			}
		}

		if err := m.SetOne(ctx, "inventory", key, fields, false); err != nil {
			t.Fatalf("SetOne: %v", err)
		}
		doc, found, err := m.GetOne(ctx, "inventory", key)
		if err != nil || !found {
			t.Fatalf("GetOne = found %v, err %v", found, err)
		}
		if len(doc.Fields) != len(fields) {
			t.Fatalf("fields = %v, want %v", doc.Fields, fields)
		}
		for name, want := range fields {
			if got := doc.Fields[name]; got != want {
				t.Fatalf("field %q = %#v, want %#v", name, got, want)
			}
		}
	})
}
