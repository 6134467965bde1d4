package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// output fans records out to every configured destination. Writes are
// serialized so lines from concurrent goroutines never interleave.
type output struct {
	mu   sync.Mutex
	dest io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dest.Write(p)
}

func openOutput(paths []string, rotation Rotation) (*output, error) {
	var dests []io.Writer
	seen := make(map[string]bool, len(paths))
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		w, err := openDestination(path, rotation)
		if err != nil {
			return nil, err
		}
		dests = append(dests, w)
	}
	switch len(dests) {
	case 0:
		return &output{dest: os.Stderr}, nil
	case 1:
		return &output{dest: dests[0]}, nil
	default:
		return &output{dest: io.MultiWriter(dests...)}, nil
	}
}

func openDestination(path string, rotation Rotation) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
	}, nil
}
