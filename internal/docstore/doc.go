// Package docstore is the keyed document store the inventory is persisted in.
//
// # Overview
//
// A Store holds named collections of documents. Each document is a key plus a
// flat field map. Four operations cover everything the inventory needs:
//
//   - ListAll: every document in a collection, in store order
//   - GetOne: one document, with found=false when the key is absent
//   - SetOne: write fields, either merged into or replacing the stored body
//   - DeleteOne: remove a document; removing a missing key succeeds
//
// # Backends
//
// Open selects a backend by name:
//
//	memory    in-process map, the default and the test double
//	redis     hash per document plus a sorted set for ordering
//	postgres  JSONB rows in pantry_documents, merge via ||
//	mysql     JSON rows in pantry_documents, merge via JSON_MERGE_PATCH
//	http      JSON REST service under /v1/collections
//
// The SQL backends create their table on Open. Listing order is insertion
// order for every backend; replacing an existing document keeps its position.
//
// # Field Values
//
// Values are normalized before they are written. Integers of any width become
// int64, floats become float64, and strings and booleans pass through. Other
// types are rejected with ErrUnsupportedValue. Values read back use the same
// representation, so a written body compares equal to the one read.
//
// # Errors
//
// Failures to reach the backend wrap ErrUnavailable:
//
//	if errors.Is(err, docstore.ErrUnavailable) {
//		// keep showing the last good listing
//	}
//
// Errors reported by a reachable server (SQL errors, Redis error replies,
// 4xx responses) are returned without ErrUnavailable.
//
// # Concurrency
//
// All backends are safe for concurrent use. Merge writes are atomic per call,
// but a read followed by a write is not: two clients updating the same key can
// overwrite each other.
package docstore
