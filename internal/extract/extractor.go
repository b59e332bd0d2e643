// Package extract converts raw document bytes into plain text. It handles the
// binary formats that reach the pipeline as regular (non-Workspace) provider
// files: PDF, Office Open XML, OpenDocument, Excel, and anything text-shaped.
package extract

import (
	"fmt"
	"strings"
)

// MIME types of binary formats the extractor understands.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeODP  = "application/vnd.oasis.opendocument.presentation"
	MimeODS  = "application/vnd.oasis.opendocument.spreadsheet"
	MimeODT  = "application/vnd.oasis.opendocument.text"
)

// Extractor converts document bytes to text based on their MIME type.
type Extractor struct{}

// New returns a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether Extract can produce text for the given MIME type.
func (e *Extractor) Supports(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimeDOCX, MimePPTX, MimeXLSX, MimeODP, MimeODS, MimeODT:
		return true
	}
	return isTextMime(mimeType)
}

// Extract returns the text content of the document bytes. Returns an error
// for unsupported MIME types; callers should check Supports first when an
// unsupported type is an expected, benign case.
func (e *Extractor) Extract(content []byte, mimeType string) (string, error) {
	switch mimeType {
	case MimePDF:
		return extractPDF(content)
	case MimeDOCX:
		return extractOOXML(content, docxFormat)
	case MimePPTX:
		return extractOOXML(content, pptxFormat)
	case MimeXLSX:
		return extractExcel(content)
	case MimeODP, MimeODT:
		return extractOpenDocument(content, true)
	case MimeODS:
		return extractOpenDocument(content, false)
	}
	if isTextMime(mimeType) {
		return extractPlain(content)
	}
	return "", fmt.Errorf("extract: unsupported MIME type %q", mimeType)
}

// isTextMime reports whether a MIME type carries text content directly.
func isTextMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json",
		"application/xml",
		"application/javascript",
		"application/x-yaml",
		"application/x-sh",
		"application/sql":
		return true
	}
	return false
}
