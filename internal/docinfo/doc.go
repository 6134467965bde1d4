// Package docinfo identifies the documents drawdiff is asked to compare.
//
// Detection sniffs magic bytes with mimetype (STEP exchange files are
// registered as model/step on top of text/plain) and cross-checks the
// extension, so a renamed or truncated file is caught before an external
// tool is launched against it. PDF page counts come from pdfcpu.
package docinfo
