package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/pantry/internal/docstore"
	"github.com/five82/pantry/internal/logging"
	"github.com/five82/pantry/internal/state"
)

var (
	// ErrInvalidInput is returned for an empty name or a non-positive quantity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable is returned when the document store cannot be reached.
	ErrStoreUnavailable = docstore.ErrUnavailable
)

const (
	// AddedWindow is how long a "just added" marker stays visible.
	AddedWindow = time.Second

	defaultSignalBuffer = 16
)

// Added announces a successful add. It is never persisted.
type Added struct {
	ID      string
	Name    string
	At      time.Time
	Expires time.Time
}

// Options configures a Manager.
type Options struct {
	Collection   string // defaults to Collection
	Logger       *zap.Logger
	SignalBuffer int
	Now          func() time.Time
}

// Manager owns the inventory snapshot and the search view over it.
type Manager struct {
	store      docstore.Store
	collection string
	log        *zap.Logger
	now        func() time.Time

	mu      sync.RWMutex // guards term and view, and pairs them with records
	records state.Store[Record]
	term    string
	view    []Record

	signals chan Added
}

// NewManager returns a Manager over store. The snapshot starts empty; call
// Refresh to load it.
func NewManager(store docstore.Store, opts Options) *Manager {
	collection := opts.Collection
	if collection == "" {
		collection = Collection
	}
	buffer := opts.SignalBuffer
	if buffer <= 0 {
		buffer = defaultSignalBuffer
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:      store,
		collection: collection,
		log:        logging.OrNop(opts.Logger),
		now:        now,
		signals:    make(chan Added, buffer),
	}
}

// Refresh re-reads the whole collection and replaces the snapshot. On failure
// the previous snapshot is kept and the error is recorded and returned.
func (m *Manager) Refresh(ctx context.Context) error {
	docs, err := m.store.ListAll(ctx, m.collection)
	if err != nil {
		m.mu.Lock()
		m.records.Update(nil, err)
		m.mu.Unlock()
		m.log.Warn("refresh failed", zap.Error(err))
		return fmt.Errorf("refresh inventory: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := FromDocument(doc)
		if err != nil {
			m.log.Warn("skipping malformed document", zap.String("key", doc.Key), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	m.mu.Lock()
	m.records.Update(records, nil)
	m.view = Filter(records, m.term)
	m.mu.Unlock()

	m.log.Debug("refreshed", zap.Int("records", len(records)))
	return nil
}

// Add stores quantity units of name. An existing record has its quantity
// increased and its serial number and category replaced; otherwise a new
// record is created. The snapshot is refreshed afterwards and an Added signal
// is emitted once the refresh succeeds.
func (m *Manager) Add(ctx context.Context, name string, quantity int, serialNumber, category string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidInput, quantity)
	}

	opID := uuid.NewString()
	log := m.log.With(zap.String("op", opID), zap.String("name", name))

	existing, found, err := m.store.GetOne(ctx, m.collection, name)
	if err != nil {
		log.Warn("add lookup failed", zap.Error(err))
		return fmt.Errorf("add %q: %w", name, err)
	}

	rec := Record{Name: name, Quantity: quantity, SerialNumber: serialNumber, Category: category}
	if found {
		// A stored document without a usable quantity counts as zero.
		current, _ := existing.Fields.Int(fieldQuantity)
		current = max(current, 0)
		if current > int64(math.MaxInt-quantity) {
			log.Warn("add rejected, quantity overflow", zap.Int64("stored", current), zap.Int("quantity", quantity))
			return fmt.Errorf("%w: %q already holds %d, adding %d overflows", ErrInvalidInput, name, current, quantity)
		}
		rec.Quantity = int(current) + quantity
	}
	if err := m.store.SetOne(ctx, m.collection, name, rec.Fields(), found); err != nil {
		log.Warn("add write failed", zap.Error(err))
		return fmt.Errorf("add %q: %w", name, err)
	}
	log.Info("item added",
		zap.Int("quantity", quantity),
		zap.Int("stored", rec.Quantity),
		zap.Bool("merged", found))

	if err := m.Refresh(ctx); err != nil {
		return err
	}
	m.emitAdded(opID, name)
	return nil
}

// AddOne adds a single unit of name, keeping the serial number and category
// the snapshot currently shows for it.
func (m *Manager) AddOne(ctx context.Context, name string) error {
	rec, _ := m.Lookup(name)
	return m.Add(ctx, name, 1, rec.SerialNumber, rec.Category)
}

// Remove takes one unit of name away. A record at quantity 1 is deleted and a
// missing record is left alone. The snapshot is refreshed either way.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return m.Refresh(ctx)
	}

	opID := uuid.NewString()
	log := m.log.With(zap.String("op", opID), zap.String("name", name))

	existing, found, err := m.store.GetOne(ctx, m.collection, name)
	if err != nil {
		log.Warn("remove lookup failed", zap.Error(err))
		return fmt.Errorf("remove %q: %w", name, err)
	}

	switch qty, _ := existing.Fields.Int(fieldQuantity); {
	case !found:
		log.Debug("remove skipped, no such item")
	case qty <= 1:
		if err := m.store.DeleteOne(ctx, m.collection, name); err != nil {
			log.Warn("remove delete failed", zap.Error(err))
			return fmt.Errorf("remove %q: %w", name, err)
		}
		log.Info("item deleted")
	default:
		if err := m.store.SetOne(ctx, m.collection, name, docstore.Fields{fieldQuantity: qty - 1}, true); err != nil {
			log.Warn("remove write failed", zap.Error(err))
			return fmt.Errorf("remove %q: %w", name, err)
		}
		log.Info("item decremented", zap.Int64("stored", qty-1))
	}

	return m.Refresh(ctx)
}

// SetSearchTerm filters the current snapshot by term and returns the result.
// It never touches the store.
func (m *Manager) SetSearchTerm(term string) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.term = term
	items := m.records.Items()
	m.view = Filter(items, term)
	return View{Term: term, Records: cloneRecords(m.view), Total: len(items)}
}

// View returns the current search view.
func (m *Manager) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return View{
		Term:    m.term,
		Records: cloneRecords(m.view),
		Total:   len(m.records.Items()),
	}
}

// Snapshot returns the full unfiltered snapshot with refresh bookkeeping.
func (m *Manager) Snapshot() state.Snapshot[Record] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records.Snapshot()
}

// Lookup returns the snapshot record for name.
func (m *Manager) Lookup(name string) (Record, bool) {
	for _, r := range m.Snapshot().Items {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

// Signals delivers an Added event for every successful add. Events are
// dropped when nobody keeps up with the channel.
func (m *Manager) Signals() <-chan Added {
	return m.signals
}

func (m *Manager) emitAdded(id, name string) {
	at := m.now()
	sig := Added{ID: id, Name: name, At: at, Expires: at.Add(AddedWindow)}
	select {
	case m.signals <- sig:
	default:
		m.log.Debug("added signal dropped", zap.String("name", name))
	}
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
