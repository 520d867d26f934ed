// Package state holds the last good listing of a remote collection.
//
// # Overview
//
// Store keeps the items from the most recent successful refresh together with
// bookkeeping about refresh failures. It sits between whatever fetches data
// (the inventory manager, driven by user actions and the background poller)
// and the UI, which reads copies on its own schedule.
//
//	Refresh path:                  Readers:
//	┌──────────────────┐          ┌──────────────────┐
//	│ store.ListAll()  │          │                  │
//	│       ↓          │          │                  │
//	│ state.Update()   │─────────→│ state.Snapshot() │
//	│       ↓          │ (mutex)  │       ↓          │
//	│ next refresh...  │          │ render rows      │
//	└──────────────────┘          └──────────────────┘
//
// # Update Semantics
//
//	// Success: replace items wholesale
//	s.Update(items, nil)
//	→ Items = items, HasData = true
//	→ LastError = nil, ConsecutiveFailures = 0
//	→ LastUpdated = LastSuccess = now
//
//	// Failure: keep items, record the error
//	s.Update(nil, err)
//	→ Items = <unchanged>
//	→ LastError = err, ConsecutiveFailures++
//	→ LastUpdated = now
//
// A failed refresh never clears or partially replaces items. Readers can tell
// the data may be behind with IsStale, and that the backend looks down with
// IsOffline (two or more failures in a row).
//
// # Copies
//
// Update copies the slice it is given and Snapshot returns a fresh copy, so
// neither writers nor readers can alias the stored items. Items are copied
// shallowly; T should be a value type.
//
// # Usage
//
//	var s state.Store[inventory.Record]
//	docs, err := backend.ListAll(ctx, "inventory")
//	if err != nil {
//		s.Update(nil, err)
//		return err
//	}
//	s.Update(decode(docs), nil)
//
//	snap := s.Snapshot()
//	if snap.IsOffline() {
//		// show the offline badge next to snap.Items
//	}
package state
