package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops detail.
	LayoutCompactWidth = 100

	// LayoutCategoryWidth is the minimum width to show the category column.
	LayoutCategoryWidth = 70

	// LayoutSerialWidth is the minimum width to show the serial number column.
	LayoutSerialWidth = 50
)

// Log display limits.
const (
	// LogTailLines is how many log lines the log view reads from the file.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultOpTimeout bounds a single store call started from the UI.
	DefaultOpTimeout = 5 * time.Second

	// DefaultRefreshTick is how often the UI re-reads the manager snapshot.
	DefaultRefreshTick = time.Second
)
