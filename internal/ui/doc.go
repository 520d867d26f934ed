// Package ui is pantry's terminal interface, built on Bubble Tea.
//
// # Architecture Overview
//
// Model is a single tea.Model. It never talks to the document store itself:
// every change goes through inventory.Manager, and store calls run inside
// tea.Cmds bounded by the operation timeout so the UI goroutine never blocks.
// When a command finishes, Update copies the manager's snapshot and search
// view back into the model.
//
// # Package Structure
//
//   - app.go: Model, Options, Update/View, messages and commands, Run
//   - inventory.go: the inventory table, selection and titled boxes
//   - add_modal.go: the "Add Items" form
//   - search.go: live search line
//   - recipe.go: recipe web search for the selected item
//   - header.go: header, command bar and status line
//   - logs.go: tail of pantry's own log file
//   - cover.go, help.go: cover screen and help overlay
//   - theme.go, style_helpers.go, keys.go: colors, styles and key bindings
//
// # Views
//
//   - Cover: "StockSmart" title, enter to continue (skipped with prefs skip_cover)
//   - Inventory: serial number, name, quantity and category per visible record
//   - Logs: the last lines of the zap log file, decoded by logtail
//
// # Data Flow
//
//  1. A tick every RefreshTick re-reads Manager.Snapshot and Manager.View;
//     the app package's poller keeps them fresh
//  2. Keys start mutations (a, +, -, R) as tea.Cmds that return mutationMsg
//  3. Search edits call Manager.SetSearchTerm directly; it never hits the store
//  4. Manager.Signals delivers Added events; the row is marked for the event's
//     window and cleared only by the timer that belongs to the same event id
//
// # Store Health
//
// A failed refresh keeps the last good rows on screen. The header swaps its
// ONLINE marker for a "STORE OFFLINE" (or TIMEOUT/ERROR) badge with the time
// of the last good refresh until a refresh succeeds again.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Manager: manager,
//		Logger:  logger.Named("ui"),
//		LogPath: cfg.LogPath,
//	})
package ui
