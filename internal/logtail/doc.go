// Package logtail reads the end of pantry's log file for the in-app log view.
//
// # Overview
//
// pantry logs JSON lines through zap into a file, because the terminal is
// owned by the UI. The log view needs the most recent lines in a readable
// form, which this package provides:
//
//  1. Read: the last N raw lines of a file
//  2. Parse: one zap JSON line decoded into an Entry
//  3. Entry.Format: a single plain-text line for display
//
// # Reading Log Files
//
// Read walks back from the end of the file in 32 KiB chunks until it has seen
// enough line breaks, so a long-running log is never read in full:
//
//	lines, err := logtail.Read(cfg.LogPath, 400)
//
// A missing file is not an error; it simply has no lines yet.
//
// # Entries
//
// zap's production encoder writes ts, level, logger and msg plus one key per
// field:
//
//	{"level":"info","ts":"2026-10-19T12:30:05.123Z","logger":"inventory","msg":"item added","name":"Egg","quantity":2}
//
// Parse lifts the known keys into Entry and keeps the rest in Fields. Lines
// that are not JSON (a panic trace, say) are kept verbatim as the Message.
// Format renders fields sorted by key:
//
//	12:30:05 INFO  [inventory] item added name=Egg quantity=2
package logtail
