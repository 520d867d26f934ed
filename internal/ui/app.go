package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/pantry/internal/inventory"
	"github.com/five82/pantry/internal/logging"
	"github.com/five82/pantry/internal/logtail"
	"github.com/five82/pantry/internal/prefs"
	"github.com/five82/pantry/internal/recipe"
	"github.com/five82/pantry/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCover View = iota
	ViewInventory
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Manager     *inventory.Manager
	Logger      *zap.Logger
	LogPath     string
	RecipeURL   string
	OpTimeout   time.Duration // per store call; zero uses DefaultOpTimeout
	Backend     string        // shown in the header
	RefreshTick time.Duration // how often the UI re-reads the manager snapshot
	Prefs       prefs.Prefs
	PrefsPath   string        // empty uses ~/.config/pantry/prefs.toml
	Opener      recipe.Opener // nil uses recipe.OpenBrowser
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	manager     *inventory.Manager
	log         *zap.Logger
	logPath     string
	recipeURL   string
	opTimeout   time.Duration
	backend     string
	refreshTick time.Duration
	prefs       prefs.Prefs
	prefsPath   string
	opener      recipe.Opener
	keys        keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot state.Snapshot[inventory.Record]
	view     inventory.View

	// Inventory state
	selectedRow  int
	selectedName string
	flash        map[string]string // record name -> id of the Added signal lighting it

	// Search
	searching   bool
	searchInput textinput.Model

	// Logs
	logViewport viewport.Model
	logState    logState

	// Overlays
	modal    Modal
	showHelp bool

	// Status line
	status      string
	statusError bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	opTimeout := opts.OpTimeout
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	refreshTick := opts.RefreshTick
	if refreshTick <= 0 {
		refreshTick = DefaultRefreshTick
	}

	recipeURL := opts.RecipeURL
	if recipeURL == "" {
		recipeURL = recipe.DefaultSearchURL
	}

	opener := opts.Opener
	if opener == nil {
		opener = recipe.OpenBrowser
	}

	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs.Theme = prefs.Defaults().Theme
	}

	startView := ViewCover
	if userPrefs.SkipCover {
		startView = ViewInventory
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search items"
	search.CharLimit = 64

	m := Model{
		ctx:         ctx,
		manager:     opts.Manager,
		log:         logging.OrNop(opts.Logger),
		logPath:     opts.LogPath,
		recipeURL:   recipeURL,
		opTimeout:   opTimeout,
		backend:     opts.Backend,
		refreshTick: refreshTick,
		prefs:       userPrefs,
		prefsPath:   opts.PrefsPath,
		opener:      opener,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(userPrefs.Theme),
		currentView: startView,
		flash:       make(map[string]string),
		searchInput: search,
		logState:    logState{follow: true},
	}
	m.syncFromManager()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refreshTick)}
	if m.manager != nil {
		cmds = append(cmds, waitForAdded(m.manager.Signals()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case addRequestMsg:
		return m, m.addCmd(msg)

	case mutationMsg:
		return m.handleMutation(msg)

	case addedMsg:
		return m.handleAdded(inventory.Added(msg))

	case flashExpiredMsg:
		if m.flash[msg.name] == msg.id {
			delete(m.flash, msg.name)
		}
		return m, nil

	case recipeMsg:
		if msg.err != nil {
			m.log.Warn("open recipe search failed", zap.String("url", msg.url), zap.Error(msg.err))
			m.setError("Could not open a browser. Recipes: " + msg.url)
		} else {
			m.setStatus("Opened recipe search")
		}
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.currentView == ViewCover {
		return m.renderCover()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	if m.currentView == ViewCover {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.currentView = ViewInventory
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("Refreshing...")
		return m, m.mutateCmd(opRefresh, "", m.manager.Refresh)

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, loadLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewInventory && msg.String() == "esc" && m.view.Term != "" {
			m.applySearch("")
			return m, nil
		}
		m.currentView = ViewInventory
		return m, nil
	}

	switch m.currentView {
	case ViewInventory:
		return m.handleInventoryKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

// handleInventoryKey processes keyboard input for the inventory view.
func (m Model) handleInventoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.modal = newAddModal()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Search):
		return m.startSearch()

	case key.Matches(msg, m.keys.AddOne):
		rec, ok := m.selectedRecord()
		if !ok {
			return m, nil
		}
		return m, m.mutateCmd(opAddOne, rec.Name, func(ctx context.Context) error {
			return m.manager.AddOne(ctx, rec.Name)
		})

	case key.Matches(msg, m.keys.Remove):
		rec, ok := m.selectedRecord()
		if !ok {
			return m, nil
		}
		return m, m.mutateCmd(opRemove, rec.Name, func(ctx context.Context) error {
			return m.manager.Remove(ctx, rec.Name)
		})

	case key.Matches(msg, m.keys.Recipe):
		return m.openRecipe()
	}

	m.moveSelection(msg)
	return m, nil
}

// handleTick re-reads the manager snapshot the poller keeps fresh.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.syncFromManager()

	cmds := []tea.Cmd{tickCmd(m.refreshTick)}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, loadLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	m.syncFromManager()

	if msg.err != nil {
		m.log.Warn("inventory operation failed",
			zap.String("op", string(msg.op)),
			zap.String("name", msg.name),
			zap.Error(msg.err))
		m.setError(describeError(msg.op, msg.name, msg.err))
		return m, nil
	}

	switch msg.op {
	case opAdd, opAddOne:
		m.selectByName(msg.name)
		m.setStatus("Added " + inventory.Record{Name: msg.name}.DisplayName())
	case opRemove:
		m.setStatus("Removed one " + inventory.Record{Name: msg.name}.DisplayName())
	case opRefresh:
		m.setStatus("Inventory refreshed")
	}
	return m, nil
}

// handleAdded lights the row for an Added signal until it expires. A newer
// signal for the same name replaces the marker id, so the older timer no
// longer clears it.
func (m Model) handleAdded(sig inventory.Added) (tea.Model, tea.Cmd) {
	m.flash[sig.Name] = sig.ID
	window := sig.Expires.Sub(sig.At)
	if window <= 0 {
		window = inventory.AddedWindow
	}
	expire := flashExpiredMsg{name: sig.Name, id: sig.ID}
	return m, tea.Batch(
		tea.Tick(window, func(time.Time) tea.Msg { return expire }),
		waitForAdded(m.manager.Signals()),
	)
}

// syncFromManager copies the manager's snapshot and view into the model.
func (m *Model) syncFromManager() {
	if m.manager == nil {
		return
	}
	m.snapshot = m.manager.Snapshot()
	m.view = m.manager.View()
	m.keepSelection()
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.prefs.Theme = m.theme.Name
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
		m.setError("Theme not saved: " + err.Error())
		return
	}
	m.setStatus("Theme " + m.theme.Name)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusError = true
}

func describeError(op operation, name string, err error) string {
	subject := inventory.Record{Name: name}.DisplayName()
	switch {
	case errors.Is(err, inventory.ErrInvalidInput):
		return "Invalid input: " + err.Error()
	case op == opRefresh && errors.Is(err, inventory.ErrStoreUnavailable):
		return "Store unavailable, showing the last good inventory"
	case errors.Is(err, inventory.ErrStoreUnavailable):
		return "Store unavailable during " + string(op) + " " + subject
	case errors.Is(err, context.DeadlineExceeded):
		return "Store timed out during " + string(op)
	default:
		return string(op) + " failed: " + err.Error()
	}
}

// Messages

type operation string

const (
	opAdd     operation = "add"
	opAddOne  operation = "add one"
	opRemove  operation = "remove"
	opRefresh operation = "refresh"
)

type tickMsg time.Time

type addRequestMsg struct {
	name         string
	quantity     int
	serialNumber string
	category     string
}

type mutationMsg struct {
	op   operation
	name string
	err  error
}

type addedMsg inventory.Added

type flashExpiredMsg struct {
	name string
	id   string
}

type recipeMsg struct {
	url string
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// mutateCmd runs fn against the store off the UI goroutine, bounded by the
// operation timeout.
func (m Model) mutateCmd(op operation, name string, fn func(context.Context) error) tea.Cmd {
	parent := m.ctx
	timeout := m.opTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return mutationMsg{op: op, name: name, err: fn(ctx)}
	}
}

func (m Model) addCmd(req addRequestMsg) tea.Cmd {
	return m.mutateCmd(opAdd, req.name, func(ctx context.Context) error {
		return m.manager.Add(ctx, req.name, req.quantity, req.serialNumber, req.category)
	})
}

func waitForAdded(signals <-chan inventory.Added) tea.Cmd {
	return func() tea.Msg {
		sig, ok := <-signals
		if !ok {
			return nil
		}
		return addedMsg(sig)
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{disabled: true}
		}
		entries, err := logtail.ReadEntries(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		// Cancelled from outside (signal); not a UI failure.
		return nil
	}
	return err
}
