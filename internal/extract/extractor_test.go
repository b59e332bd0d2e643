package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestSupports(t *testing.T) {
	e := New()
	for _, mime := range []string{
		MimePDF, MimeDOCX, MimePPTX, MimeXLSX, MimeODP, MimeODS, MimeODT,
		"text/plain", "text/markdown", "application/json",
	} {
		if !e.Supports(mime) {
			t.Errorf("Supports(%q) = false, want true", mime)
		}
	}
	for _, mime := range []string{"image/png", "video/mp4", "application/octet-stream", ""} {
		if e.Supports(mime) {
			t.Errorf("Supports(%q) = true, want false", mime)
		}
	}
}

func TestExtract_Plain(t *testing.T) {
	e := New()
	got, err := e.Extract([]byte("hello world"), "text/plain")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_PlainInvalidUTF8(t *testing.T) {
	e := New()
	got, err := e.Extract([]byte{'o', 'k', 0xff, '!'}, "text/plain")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("invalid bytes not replaced: %q", got)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	e := New()
	if _, err := e.Extract([]byte{1, 2, 3}, "image/png"); err == nil {
		t.Error("expected error for unsupported MIME type")
	}
}

func TestExtract_DOCX(t *testing.T) {
	content := zipBytes(t, map[string]string{
		"word/document.xml": `<w:document><w:p w:rsidR="0"><w:r><w:t>Hello</w:t></w:r>` +
			`<w:r><w:t xml:space="preserve">docx world</w:t></w:r></w:p></w:document>`,
	})
	e := New()
	got, err := e.Extract(content, MimeDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Hello docx world" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_DOCXRelocatedMainPart(t *testing.T) {
	// Some writers move the body (e.g. word/document2.xml after a repair)
	// and declare it via a [Content_Types].xml override.
	content := zipBytes(t, map[string]string{
		contentTypesPath: `<Types><Override PartName="/word/document2.xml" ` +
			`ContentType="` + docxMainContentType + `"/></Types>`,
		"word/document2.xml": `<w:document><w:p><w:r><w:t>Relocated body</w:t></w:r></w:p></w:document>`,
		"word/document.xml":  `<w:document></w:document>`,
	})
	e := New()
	got, err := e.Extract(content, MimeDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Relocated body" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_DOCXOverrideAttributeOrderReversed(t *testing.T) {
	content := zipBytes(t, map[string]string{
		contentTypesPath: `<Types><Override ContentType="` + docxMainContentType + `" ` +
			`PartName="/word/main.xml"/></Types>`,
		"word/main.xml": `<w:document><w:p><w:r><w:t>Reversed</w:t></w:r></w:p></w:document>`,
	})
	e := New()
	got, err := e.Extract(content, MimeDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Reversed" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_DOCXMissingPart(t *testing.T) {
	content := zipBytes(t, map[string]string{"other.xml": "<x/>"})
	e := New()
	if _, err := e.Extract(content, MimeDOCX); err == nil {
		t.Error("expected error when document part is missing")
	}
}

func TestExtract_PPTX(t *testing.T) {
	content := zipBytes(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld><a:t>slide one</a:t></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld><a:t xml:space="preserve">slide two</a:t></p:sld>`,
	})
	e := New()
	got, err := e.Extract(content, MimePPTX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, want := range []string{"slide one", "slide two"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestExtract_OpenDocument(t *testing.T) {
	content := zipBytes(t, map[string]string{
		"content.xml": `<office:body><text:h text:outline-level="1">Title</text:h>` +
			`<text:p text:style-name="P1">body text</text:p></office:body>`,
	})
	e := New()
	got, err := e.Extract(content, MimeODP)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "body text") || !strings.Contains(got, "Title") {
		t.Errorf("got %q", got)
	}

	// Spreadsheets skip heading elements.
	odsGot, err := e.Extract(content, MimeODS)
	if err != nil {
		t.Fatalf("Extract ODS: %v", err)
	}
	if strings.Contains(odsGot, "Title") {
		t.Errorf("ODS extraction should not include headings: %q", odsGot)
	}
}

func TestExtract_NotAZip(t *testing.T) {
	e := New()
	for _, mime := range []string{MimeDOCX, MimePPTX, MimeODP, MimeODS} {
		if _, err := e.Extract([]byte("not a zip"), mime); err == nil {
			t.Errorf("expected error for %s with junk bytes", mime)
		}
	}
}
