package fileutil

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// MoveFile renames src onto dst, replacing any existing dst. Across
// filesystems it falls back to CopyFileVerified followed by removing src.
// dst is left untouched when src does not exist.
func MoveFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	err := os.Rename(src, dst)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, unix.EXDEV):
		return fmt.Errorf("rename %s: %w", filepath.Base(src), err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFileVerified copies src to dst through a temporary sibling of dst,
// compares SHA-256 digests of both sides, then renames the copy into place.
// A failed copy never leaves a partial dst behind.
func CopyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temp copy: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	srcSum := sha256.New()
	if _, err := io.Copy(tmp, io.TeeReader(in, srcSum)); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	dstSum, err := digest(tmp)
	if err != nil {
		return err
	}
	if string(dstSum) != string(srcSum.Sum(nil)) {
		return fmt.Errorf("copy of %s does not match source", filepath.Base(src))
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}
	committed = true
	return nil
}

// digest hashes f from the start.
func digest(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
