package docstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behavior every backend must share. newStore is
// called once per subtest; collections are unique so shared servers can be
// reused between runs.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	collection := func() string { return "contract-" + uuid.NewString() }
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.GetOne(ctx, collection(), "nothing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Egg", Fields{"quantity": 2, "serialNumber": "S1", "category": "Dairy"}, false))

		doc, found, err := s.GetOne(ctx, c, "Egg")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Egg", doc.Key)
		assert.Equal(t, Fields{"quantity": int64(2), "serialNumber": "S1", "category": "Dairy"}, doc.Fields)
	})

	t.Run("value types", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "k", Fields{"f": 1.5, "b": true, "s": "", "n": int64(-7)}, false))

		doc, found, err := s.GetOne(ctx, c, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, Fields{"f": 1.5, "b": true, "s": "", "n": int64(-7)}, doc.Fields)
	})

	t.Run("merge keeps unsupplied fields", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 3, "serialNumber": "M1", "category": "Dairy"}, false))
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 2}, true))

		doc, _, err := s.GetOne(ctx, c, "Milk")
		require.NoError(t, err)
		assert.Equal(t, Fields{"quantity": int64(2), "serialNumber": "M1", "category": "Dairy"}, doc.Fields)
	})

	t.Run("merge creates missing document", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Rice", Fields{"quantity": 1}, true))

		doc, found, err := s.GetOne(ctx, c, "Rice")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, Fields{"quantity": int64(1)}, doc.Fields)
	})

	t.Run("replace drops unsupplied fields", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 3, "serialNumber": "M1"}, false))
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 9}, false))

		doc, _, err := s.GetOne(ctx, c, "Milk")
		require.NoError(t, err)
		assert.Equal(t, Fields{"quantity": int64(9)}, doc.Fields)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Egg", Fields{"quantity": 1}, false))
		require.NoError(t, s.DeleteOne(ctx, c, "Egg"))
		require.NoError(t, s.DeleteOne(ctx, c, "Egg"))
		require.NoError(t, s.DeleteOne(ctx, c, "never-existed"))

		_, found, err := s.GetOne(ctx, c, "Egg")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		for _, key := range []string{"Egg", "Milk", "Bread"} {
			require.NoError(t, s.SetOne(ctx, c, key, Fields{"quantity": 1}, false))
		}
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 4}, false))
		require.NoError(t, s.DeleteOne(ctx, c, "Egg"))

		docs, err := s.ListAll(ctx, c)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Milk", docs[0].Key)
		assert.Equal(t, Fields{"quantity": int64(4)}, docs[0].Fields)
		assert.Equal(t, "Bread", docs[1].Key)
	})

	t.Run("list empty collection", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.ListAll(ctx, collection())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := newStore(t)
		a, b := collection(), collection()
		require.NoError(t, s.SetOne(ctx, a, "Egg", Fields{"quantity": 1}, false))

		_, found, err := s.GetOne(ctx, b, "Egg")
		require.NoError(t, err)
		assert.False(t, found)

		docs, err := s.ListAll(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("keys with separators", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		key := "Salt & Pepper/Mix 100%"
		require.NoError(t, s.SetOne(ctx, c, key, Fields{"quantity": 2}, false))

		doc, found, err := s.GetOne(ctx, c, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, key, doc.Key)

		docs, err := s.ListAll(ctx, c)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, key, docs[0].Key)
	})

	t.Run("dot keys", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.NoError(t, s.SetOne(ctx, c, "Milk", Fields{"quantity": 1}, false))
		require.NoError(t, s.SetOne(ctx, c, "..", Fields{"quantity": 2}, false))
		require.NoError(t, s.SetOne(ctx, c, ".", Fields{"quantity": 3}, false))

		doc, found, err := s.GetOne(ctx, c, "..")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, Fields{"quantity": int64(2)}, doc.Fields)

		require.NoError(t, s.DeleteOne(ctx, c, ".."))
		docs, err := s.ListAll(ctx, c)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Milk", docs[0].Key)
		assert.Equal(t, ".", docs[1].Key)
		assert.Equal(t, Fields{"quantity": int64(3)}, docs[1].Fields)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		s := newStore(t)
		c := collection()
		require.ErrorIs(t, s.SetOne(ctx, c, "", Fields{"quantity": 1}, false), ErrInvalidKey)
		_, _, err := s.GetOne(ctx, c, "")
		require.ErrorIs(t, err, ErrInvalidKey)
		require.ErrorIs(t, s.DeleteOne(ctx, c, ""), ErrInvalidKey)
	})

	t.Run("unsupported value rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.SetOne(ctx, collection(), "k", Fields{"bad": []string{"x"}}, false)
		require.ErrorIs(t, err, ErrUnsupportedValue)
	})
}
