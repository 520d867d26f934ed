// Package inventory manages the pantry's item records on top of a document
// store.
//
// # Overview
//
// A Manager holds a snapshot of every record in the inventory collection and a
// search view filtered from it. Mutations go straight to the store and are
// followed by a full re-listing, so the snapshot always reflects the latest
// successful read rather than local guesses.
//
// # Records
//
// Each record is one document keyed by item name:
//
//	inventory/Egg  {"quantity": 5, "serialNumber": "S2", "category": "Dairy"}
//
// Quantity is always positive while a record exists.
//
// # Mutations
//
//	Add(name, q, serial, category)
//	  absent  → replace write {quantity: q, serial, category}
//	  present → merge write {quantity: stored+q, serial, category}
//	Remove(name)
//	  absent  → nothing written
//	  qty ≤ 1 → delete
//	  qty > 1 → merge write {quantity: qty-1}
//
// Both are a read followed by a write with no lock or version check. Two
// clients changing the same item at once can lose an update.
//
// Every mutation ends with Refresh. A successful Add then sends an Added event
// on Signals, which the UI uses to flash the row for AddedWindow.
//
// # Failure Handling
//
// Store failures wrap ErrStoreUnavailable and are returned unchanged in kind.
// A failed refresh keeps the previous snapshot and marks it stale; see
// state.Snapshot.IsStale.
//
// # Search
//
// SetSearchTerm is synchronous and never calls the store. Matching is a
// case-insensitive substring test on the name, and the term is re-applied
// whenever a refresh replaces the snapshot.
package inventory
