package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// chunkSize is how much Read pulls per step when walking back from the end.
const chunkSize = 32 * 1024

// Read returns at most maxLines from the end of the file at path. maxLines <= 0
// returns every line. A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if maxLines <= 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return splitLines(data), nil
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}

	// Walk back until the tail holds more line breaks than wanted lines, so
	// the partial line at the front of the buffer can be dropped.
	var (
		tail     []byte
		breaks   int
		offset   = info.Size()
		newlines = []byte{'\n'}
	)
	for offset > 0 && breaks <= maxLines {
		n := min(int64(chunkSize), offset)
		offset -= n
		chunk := make([]byte, n)
		if _, err := f.ReadAt(chunk, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read log: %w", err)
		}
		breaks += bytes.Count(chunk, newlines)
		tail = append(chunk, tail...)
	}

	lines := splitLines(tail)
	if offset > 0 && len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// splitLines splits on \n, drops a trailing \r per line and ignores the final
// terminator.
func splitLines(data []byte) []string {
	data = bytes.TrimSuffix(data, []byte{'\n'})
	if len(data) == 0 {
		return nil
	}
	parts := bytes.Split(data, []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(bytes.TrimSuffix(p, []byte{'\r'}))
	}
	return lines
}

// ReadEntries is Read followed by Parse on every non-blank line.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}
