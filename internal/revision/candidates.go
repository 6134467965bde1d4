package revision

import (
	"os"
	"path/filepath"
	"strings"
)

// Candidates lists the names in reference's directory that share its
// extension (case-insensitive), excluding directories and reference itself.
// The reference is matched by name and by file identity, so a differently
// cased name on a case-insensitive filesystem, a hard link or a symlink to
// the same file never comes back as a candidate. Names are returned in
// directory listing order.
func Candidates(reference string) ([]string, error) {
	dir := filepath.Dir(reference)
	self := filepath.Base(reference)
	_, ext := SplitExt(self)
	ext = strings.ToLower(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	selfInfo, err := os.Stat(reference)
	if err != nil {
		selfInfo = nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == self || !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		if entry.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && (info.IsDir() || (selfInfo != nil && os.SameFile(selfInfo, info))) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// SplitExt splits name into stem and extension. Leading dots belong to the
// stem, so ".profile" has no extension.
func SplitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}
