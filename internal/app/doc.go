// Package app wires pantry together and runs it.
//
// # Overview
//
// This package is the composition root: it loads configuration, opens the
// document store, builds the inventory manager and hands it to the UI. Nothing
// else in pantry constructs a manager or reaches for a global.
//
// # Startup
//
//  1. Load ~/.config/pantry/config.toml (flags may override backend and poll)
//  2. Open the JSON log file
//  3. Open the configured document store backend
//  4. Build an inventory.Manager over it
//  5. Refresh once so the first frame has data
//  6. Start the background poller
//  7. Run the TUI until the user quits or the context is cancelled
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()         Read config
//	       ├─────> logging.New()         zap file logger
//	       ├─────> docstore.Open()       memory, redis, postgres, mysql or http
//	       ├─────> inventory.NewManager()
//	       ├─────> StartPoller()         Background refresh
//	       └─────> ui.Run()              Start TUI (blocks)
//
// # Polling Behavior
//
// The poller calls Manager.Refresh every poll_seconds so edits made by other
// clients of the same store show up without user action. Each refresh is
// bounded by store.timeout_seconds. Failures are logged and retried with
// exponential backoff:
//
//	wait = interval × 2^failures, capped at 30s
//
// A failed refresh leaves the last good snapshot in place; the UI shows an
// offline badge after two failures in a row. The first success resets the
// cadence.
//
// An initial refresh failure does not stop startup: the UI opens with an empty,
// stale snapshot and the poller keeps trying. A store that cannot be opened at
// all (bad DSN, unreachable server at connect time) is fatal.
//
// # Shutdown
//
// Cancelling the context stops the poller and the UI. Run closes the store and
// flushes the logger before returning.
package app
