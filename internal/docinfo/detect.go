package docinfo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"drawdiff/internal/services"
)

// Kind classifies a document.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindSTEP  Kind = "step"
	KindOther Kind = "other"
)

// MIMESTEP is the media type registered for ISO 10303-21 exchange files.
const MIMESTEP = "model/step"

var stepMagic = []byte("ISO-10303-21;")

func init() {
	api.DisableConfigDir()
	mimetype.Lookup("text/plain").Extend(detectSTEP, MIMESTEP, ".step", "application/step")
}

func detectSTEP(raw []byte, _ uint32) bool {
	return bytes.HasPrefix(bytes.TrimLeft(raw, "\ufeff \t\r\n"), stepMagic)
}

// Info describes a detected document.
type Info struct {
	Path      string
	Kind      Kind
	MIME      string
	Extension string
	Size      int64
	// ExtensionMismatch is set when the content type disagrees with the
	// file name's extension.
	ExtensionMismatch bool
}

// Detect sniffs path and classifies it.
func Detect(path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, services.Wrap(services.ErrNotFound, "docinfo", "detect", path, err)
		}
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return Info{}, services.Wrap(services.ErrValidation, "docinfo", "detect", path+" is a directory", nil)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("detect %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	info := Info{
		Path:      path,
		MIME:      mtype.String(),
		Extension: ext,
		Size:      stat.Size(),
		Kind:      KindOther,
	}
	switch {
	case mtype.Is("application/pdf"):
		info.Kind = KindPDF
		info.ExtensionMismatch = ext != ".pdf"
	case mtype.Is(MIMESTEP):
		info.Kind = KindSTEP
		info.ExtensionMismatch = ext != ".step" && ext != ".stp"
	}
	return info, nil
}

// RequirePDF returns the document's info when it is a PDF and a validation
// error otherwise.
func RequirePDF(path string) (Info, error) {
	info, err := Detect(path)
	if err != nil {
		return Info{}, err
	}
	if info.Kind != KindPDF {
		return info, services.Wrap(services.ErrValidation, "docinfo", "require pdf",
			fmt.Sprintf("%s is %s, not a PDF", filepath.Base(path), info.MIME), nil)
	}
	return info, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "docinfo", "page count", filepath.Base(path), err)
	}
	return n, nil
}
