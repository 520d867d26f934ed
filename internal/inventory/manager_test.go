package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/pantry/internal/docstore"
)

// flakyStore wraps Memory with call counting and switchable failures.
type flakyStore struct {
	*docstore.Memory

	mu    sync.Mutex
	calls int
	down  bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: docstore.NewMemory()}
}

func (f *flakyStore) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *flakyStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *flakyStore) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.down {
		return fmt.Errorf("%w: connection refused", docstore.ErrUnavailable)
	}
	return nil
}

func (f *flakyStore) ListAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.Memory.ListAll(ctx, collection)
}

func (f *flakyStore) GetOne(ctx context.Context, collection, key string) (docstore.Document, bool, error) {
	if err := f.enter(); err != nil {
		return docstore.Document{}, false, err
	}
	return f.Memory.GetOne(ctx, collection, key)
}

func (f *flakyStore) SetOne(ctx context.Context, collection, key string, fields docstore.Fields, merge bool) error {
	if err := f.enter(); err != nil {
		return err
	}
	return f.Memory.SetOne(ctx, collection, key, fields, merge)
}

func (f *flakyStore) DeleteOne(ctx context.Context, collection, key string) error {
	if err := f.enter(); err != nil {
		return err
	}
	return f.Memory.DeleteOne(ctx, collection, key)
}

func newTestManager(t *testing.T) (*Manager, *flakyStore) {
	t.Helper()
	store := newFlakyStore()
	return NewManager(store, Options{}), store
}

func stored(t *testing.T, store docstore.Store, name string) (Record, bool) {
	t.Helper()
	doc, found, err := store.GetOne(context.Background(), Collection, name)
	require.NoError(t, err)
	if !found {
		return Record{}, false
	}
	rec, err := FromDocument(doc)
	require.NoError(t, err)
	return rec, true
}

func TestAdd_CreatesRecord(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	require.NoError(t, m.Add(ctx, "Egg", 2, "S1", "Dairy"))

	rec, found := stored(t, store, "Egg")
	require.True(t, found)
	assert.Equal(t, Record{Name: "Egg", Quantity: 2, SerialNumber: "S1", Category: "Dairy"}, rec)
	assert.Equal(t, []Record{rec}, m.Snapshot().Items)
}

func TestAdd_MergesQuantityAndReplacesMetadata(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	require.NoError(t, m.Add(ctx, "Egg", 2, "S1", "Dairy"))
	require.NoError(t, m.Add(ctx, "Egg", 3, "S2", "Protein"))

	rec, _ := stored(t, store, "Egg")
	assert.Equal(t, Record{Name: "Egg", Quantity: 5, SerialNumber: "S2", Category: "Protein"}, rec)

	snap := m.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 5, snap.Items[0].Quantity)
}

func TestAdd_ExistingWithoutQuantityCountsAsZero(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, store.SetOne(ctx, Collection, "Salt", docstore.Fields{"category": "Spice"}, false))

	require.NoError(t, m.Add(ctx, "Salt", 2, "", "Spice"))

	rec, _ := stored(t, store, "Salt")
	assert.Equal(t, 2, rec.Quantity)
}

func TestAdd_RejectsInvalidInputBeforeStoreCall(t *testing.T) {
	tests := []struct {
		name     string
		item     string
		quantity int
	}{
		{"empty name", "", 1},
		{"blank name", "   ", 1},
		{"zero quantity", "Egg", 0},
		{"negative quantity", "Egg", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager(t)
			err := m.Add(context.Background(), tt.item, tt.quantity, "", "")
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, store.callCount())
		})
	}
}

func TestAdd_RejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", math.MaxInt, "SN-1", "Dairy"))

	writes := store.callCount()
	err := m.Add(ctx, "Egg", 1, "SN-2", "Bakery")
	require.ErrorIs(t, err, ErrInvalidInput)
	// Only the lookup reached the store.
	assert.Equal(t, writes+1, store.callCount())

	doc, found, err := store.Memory.GetOne(ctx, Collection, "Egg")
	require.NoError(t, err)
	require.True(t, found)
	qty, ok := doc.Fields.Int("quantity")
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt), qty)

	require.NoError(t, m.Refresh(ctx))
	rec, ok := m.Lookup("Egg")
	require.True(t, ok)
	assert.Equal(t, math.MaxInt, rec.Quantity)
	assert.Equal(t, "SN-1", rec.SerialNumber)
}

func TestAdd_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Milk", 1, "", ""))
	before := m.Snapshot().Items

	store.setDown(true)
	err := m.Add(ctx, "Egg", 1, "", "")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, before, m.Snapshot().Items)

	select {
	case sig := <-m.Signals():
		require.Equal(t, "Milk", sig.Name)
	default:
		t.Fatal("expected the earlier Milk signal")
	}
	select {
	case sig := <-m.Signals():
		t.Fatalf("unexpected signal for failed add: %+v", sig)
	default:
	}
}

func TestAdd_EmitsAddedSignal(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m := NewManager(docstore.NewMemory(), Options{Now: func() time.Time { return at }})

	require.NoError(t, m.Add(context.Background(), "Egg", 1, "", ""))

	select {
	case sig := <-m.Signals():
		assert.Equal(t, "Egg", sig.Name)
		assert.NotEmpty(t, sig.ID)
		assert.Equal(t, at, sig.At)
		assert.Equal(t, at.Add(AddedWindow), sig.Expires)
	default:
		t.Fatal("no Added signal")
	}
}

func TestAdd_SignalIDsAreUnique(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))

	first, second := <-m.Signals(), <-m.Signals()
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAdd_FullSignalBufferDoesNotBlock(t *testing.T) {
	m := NewManager(docstore.NewMemory(), Options{SignalBuffer: 1})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))
	}
	assert.Len(t, m.Signals(), 1)
	assert.Equal(t, 3, m.Snapshot().Items[0].Quantity)
}

func TestAddOne_KeepsSnapshotMetadata(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 2, "S1", "Dairy"))

	require.NoError(t, m.AddOne(ctx, "Egg"))

	rec, _ := stored(t, store, "Egg")
	assert.Equal(t, Record{Name: "Egg", Quantity: 3, SerialNumber: "S1", Category: "Dairy"}, rec)
}

func TestAddOne_UnknownNameCreatesRecord(t *testing.T) {
	m, store := newTestManager(t)
	require.NoError(t, m.AddOne(context.Background(), "Bread"))

	rec, found := stored(t, store, "Bread")
	require.True(t, found)
	assert.Equal(t, Record{Name: "Bread", Quantity: 1}, rec)
}

func TestRemove_DeletesAtOne(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))

	require.NoError(t, m.Remove(ctx, "Egg"))

	_, found := stored(t, store, "Egg")
	assert.False(t, found)
	assert.Empty(t, m.Snapshot().Items)
}

func TestRemove_Decrements(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Milk", 3, "M1", "Dairy"))

	require.NoError(t, m.Remove(ctx, "Milk"))

	rec, _ := stored(t, store, "Milk")
	assert.Equal(t, Record{Name: "Milk", Quantity: 2, SerialNumber: "M1", Category: "Dairy"}, rec)
	assert.Equal(t, 2, m.Snapshot().Items[0].Quantity)
}

func TestRemove_MissingIsNoOp(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Milk", 1, "", ""))
	before, err := store.ListAll(ctx, Collection)
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, "Bread"))
	require.NoError(t, m.Remove(ctx, ""))

	after, err := store.ListAll(ctx, Collection)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemove_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Milk", 2, "", ""))

	store.setDown(true)
	require.ErrorIs(t, m.Remove(ctx, "Milk"), ErrStoreUnavailable)

	store.setDown(false)
	rec, _ := stored(t, store, "Milk")
	assert.Equal(t, 2, rec.Quantity)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 2, "", ""))
	require.NoError(t, m.Add(ctx, "Milk", 1, "", ""))
	m.SetSearchTerm("eg")
	before := m.Snapshot()

	store.setDown(true)
	err := m.Refresh(ctx)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	snap := m.Snapshot()
	assert.Equal(t, before.Items, snap.Items)
	assert.True(t, snap.IsStale())
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.Equal(t, []Record{{Name: "Egg", Quantity: 2}}, m.View().Records)

	store.setDown(false)
	require.NoError(t, m.Refresh(ctx))
	assert.False(t, m.Snapshot().IsStale())
}

func TestRefresh_PicksUpExternalChanges(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))

	require.NoError(t, store.SetOne(ctx, Collection, "Milk", Record{Name: "Milk", Quantity: 4}.Fields(), false))
	require.NoError(t, m.Refresh(ctx))

	names := []string{}
	for _, r := range m.Snapshot().Items {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Egg", "Milk"}, names)
}

func TestRefresh_SkipsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, store.SetOne(ctx, Collection, "Egg", docstore.Fields{"quantity": 2}, false))
	require.NoError(t, store.SetOne(ctx, Collection, "Ghost", docstore.Fields{"quantity": "lots"}, false))
	require.NoError(t, store.SetOne(ctx, Collection, "Zero", docstore.Fields{"quantity": 0}, false))

	require.NoError(t, m.Refresh(ctx))
	assert.Equal(t, []Record{{Name: "Egg", Quantity: 2}}, m.Snapshot().Items)
}

func TestSetSearchTerm(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))
	require.NoError(t, m.Add(ctx, "Milk", 1, "", ""))
	calls := store.callCount()

	view := m.SetSearchTerm("eg")
	assert.Equal(t, "eg", view.Term)
	assert.Equal(t, []Record{{Name: "Egg", Quantity: 1}}, view.Records)
	assert.Equal(t, 2, view.Total)

	view = m.SetSearchTerm("")
	assert.Len(t, view.Records, 2)

	view = m.SetSearchTerm("MILK")
	assert.Equal(t, "Milk", view.Records[0].Name)

	assert.Equal(t, calls, store.callCount(), "search must not call the store")
	assert.Len(t, m.Snapshot().Items, 2)
}

func TestSearchTermSurvivesRefresh(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Milk", 1, "", ""))
	m.SetSearchTerm("egg")
	assert.Empty(t, m.View().Records)

	require.NoError(t, m.Add(ctx, "Eggplant", 1, "", ""))
	view := m.View()
	assert.Equal(t, "egg", view.Term)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "Eggplant", view.Records[0].Name)
}

func TestView_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))

	view := m.View()
	view.Records[0].Quantity = 100
	snap := m.Snapshot()
	snap.Items[0].Name = "changed"

	assert.Equal(t, 1, m.View().Records[0].Quantity)
	assert.Equal(t, "Egg", m.Snapshot().Items[0].Name)
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.NoError(t, m.Add(ctx, "Egg", 1, "", ""))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Refresh(ctx)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				v := m.SetSearchTerm("e")
				if len(v.Records) > v.Total {
					t.Errorf("view has %d records, snapshot %d", len(v.Records), v.Total)
				}
			}
		}()
	}
	wg.Wait()
}

func TestErrStoreUnavailableMatchesDocstore(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", docstore.ErrUnavailable)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}
