package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drawdiff/internal/config"
	"drawdiff/internal/logging"
)

const (
	pollInterval = 250 * time.Millisecond
	maxLineBytes = 1024 * 1024
)

// TailOptions controls a single Tail call.
//
// A negative Offset returns the last Limit lines of the file; otherwise lines
// are read forward from Offset. Contains keeps only lines that include the
// given substring (a run id, for example).
type TailOptions struct {
	Offset   int64
	Limit    int
	Follow   bool
	Wait     time.Duration
	Contains string
}

// TailResult holds the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Path returns the drawdiff log file for cfg.
func Path(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, logging.FileName)
}

// Tail reads lines from the log at path. A missing file yields no lines and
// offset 0. With Follow and a positive Wait, Tail blocks until at least one
// matching line arrives, Wait elapses, or ctx is done.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}
	keep := lineFilter(opts.Contains)

	if opts.Offset < 0 {
		result.Lines, result.Offset, err = lastLines(path, opts.Limit, keep)
	} else {
		start := opts.Offset
		// A rotated or truncated file restarts from the top.
		if start > info.Size() {
			start = 0
		}
		result.Lines, result.Offset, err = linesFrom(path, start, keep)
	}
	if err != nil {
		return result, err
	}

	if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
		return waitForLines(ctx, path, result.Offset, opts.Wait, keep)
	}
	return result, nil
}

func lineFilter(contains string) func(string) bool {
	contains = strings.TrimSpace(contains)
	if contains == "" {
		return func(string) bool { return true }
	}
	return func(line string) bool { return strings.Contains(line, contains) }
}

// scanLines calls fn for every complete line of f starting at its current
// position and returns the number of bytes consumed. A trailing line without
// a newline is left for the next read, so a writer caught mid-line is never
// split in two.
func scanLines(f *os.File, fn func(string)) (int64, error) {
	r := bufio.NewReaderSize(f, 64*1024)
	var consumed int64
	for {
		chunk, err := r.ReadSlice('\n')
		switch {
		case err == nil:
			consumed += int64(len(chunk))
			fn(strings.TrimRight(string(chunk), "\r\n"))
		case errors.Is(err, bufio.ErrBufferFull):
			// Over-long line: keep reading until its newline.
			head := string(chunk)
			rest, rerr := r.ReadString('\n')
			if rerr != nil {
				return consumed, ignoreEOF(rerr)
			}
			line := head + rest
			if len(line) > maxLineBytes {
				line = line[:maxLineBytes]
			}
			consumed += int64(len(head) + len(rest))
			fn(strings.TrimRight(line, "\r\n"))
		default:
			return consumed, ignoreEOF(err)
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("read log file: %w", err)
}

// lastLines returns the final limit matching lines and the offset just past
// the last complete line. A non-positive limit only reports that offset.
func lastLines(path string, limit int, keep func(string) bool) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var window []string
	end, err := scanLines(f, func(line string) {
		if limit <= 0 || !keep(line) {
			return
		}
		window = append(window, line)
		if len(window) > limit {
			window = window[1:]
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return window, end, nil
}

func linesFrom(path string, offset int64, keep func(string) bool) ([]string, int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	n, err := scanLines(f, func(line string) {
		if keep(line) {
			lines = append(lines, line)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return lines, offset + n, nil
}

// waitForLines polls from offset until a matching line shows up, wait
// elapses or ctx ends.
func waitForLines(ctx context.Context, path string, offset int64, wait time.Duration, keep func(string) bool) (TailResult, error) {
	timeout := time.NewTimer(wait)
	defer timeout.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	result := TailResult{Offset: offset}
	for {
		if info, err := os.Stat(path); err == nil && info.Size() < result.Offset {
			result.Offset = 0
		}
		lines, next, err := linesFrom(path, result.Offset, keep)
		if err != nil {
			return result, err
		}
		result.Offset = next
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-timeout.C:
			return result, nil
		case <-tick.C:
		}
	}
}
