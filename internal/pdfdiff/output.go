package pdfdiff

import (
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to the comparison file's base name.
const DefaultSuffix = "-Redline"

// DefaultOutputPath names the redline after the comparison file:
// <dir of B>/<base of B><suffix>.pdf. An empty fileB yields diff_result.pdf.
func DefaultOutputPath(fileB, suffix string) string {
	if strings.TrimSpace(fileB) == "" {
		return "diff_result.pdf"
	}
	base := filepath.Base(fileB)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(fileB), base+suffix+".pdf")
}
