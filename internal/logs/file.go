package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	maxLineBytes = 1 << 20
	pollInterval = 250 * time.Millisecond
)

// FileTailer reads a log file from a remembered byte offset.
type FileTailer struct {
	path   string
	offset int64
}

// NewFileTailer returns a tailer positioned at the start of path.
func NewFileTailer(path string) *FileTailer {
	return &FileTailer{path: path}
}

// Offset reports the byte position the next read starts from.
func (t *FileTailer) Offset() int64 {
	return t.offset
}

// Last returns up to n trailing lines and moves the offset to end of file.
// A missing file yields no lines.
func (t *FileTailer) Last(n int) ([]string, error) {
	file, err := t.open()
	if file == nil || err != nil {
		return nil, err
	}
	defer file.Close()

	var ring []string
	if n > 0 {
		ring = make([]string, 0, n)
	}
	scanner := newScanner(file)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	if t.offset, err = file.Seek(0, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek log file: %w", err)
	}
	return ring, nil
}

// Next returns lines appended since the last read. When none are available it
// polls until wait elapses or ctx is done. A file that shrank is read from the
// start again.
func (t *FileTailer) Next(ctx context.Context, wait time.Duration) ([]string, error) {
	deadline := time.Now().Add(max(wait, 0))
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		lines, err := t.readForward()
		if err != nil || len(lines) > 0 {
			return lines, err
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *FileTailer) readForward() ([]string, error) {
	file, err := t.open()
	if file == nil || err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < t.offset {
		t.offset = 0
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	scanner := newScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	if t.offset, err = file.Seek(0, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, nil
}

// open returns (nil, nil) when the file does not exist yet.
func (t *FileTailer) open() (*os.File, error) {
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.offset = 0
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", t.path)
	}
	return file, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}
