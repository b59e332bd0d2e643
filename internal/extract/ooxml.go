package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxDefaultPart is the conventional path of the DOCX main document body.
const docxDefaultPart = "word/document.xml"

// docxMainContentType is the content type of the DOCX main document part.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// The Override element allows either attribute order.
var (
	docxPartOverride    = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	docxPartOverrideRev = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// ooxmlFormat describes how to pull text nodes out of one Office Open XML
// package flavour. DOCX keeps its body in a single document part; PPTX spreads
// text across one XML part per slide.
type ooxmlFormat struct {
	name string
	// parts returns the part-name matcher for this package. Resolved per
	// package because DOCX writers may relocate the main body.
	parts      func(zr *zip.Reader) func(name string) bool
	singlePart bool
	textTag    *regexp.Regexp
}

var docxFormat = ooxmlFormat{
	name: "DOCX",
	parts: func(zr *zip.Reader) func(name string) bool {
		target := docxMainPart(zr)
		return func(name string) bool { return name == target }
	},
	singlePart: true,
	// Matches <w:t>text</w:t> including attributed forms like
	// <w:t xml:space="preserve">.
	textTag: regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`),
}

var pptxFormat = ooxmlFormat{
	name: "PPTX",
	parts: func(zr *zip.Reader) func(name string) bool {
		return func(name string) bool {
			return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
		}
	},
	textTag: regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`),
}

// docxMainPart resolves the main document part from the package's
// [Content_Types].xml Override entry, falling back to the conventional path
// when the manifest is absent or carries no override.
func docxMainPart(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		manifest, err := readZipFile(f)
		if err != nil {
			break
		}
		if m := docxPartOverride.FindSubmatch(manifest); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		if m := docxPartOverrideRev.FindSubmatch(manifest); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		break
	}
	return docxDefaultPart
}

// extractOOXML extracts text from an OOXML zip package by collecting the inner
// text of the format's text tags across all matching parts. Run and paragraph
// attributes are ignored so attributed real-world documents still yield text.
func extractOOXML(content []byte, format ooxmlFormat) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip: %w", format.name, err)
	}
	match := format.parts(zr)
	var b strings.Builder
	found := false
	for _, f := range zr.File {
		if !match(f.Name) {
			continue
		}
		found = true
		part, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract %s: %s: %w", format.name, f.Name, err)
		}
		for _, m := range format.textTag.FindAllStringSubmatch(string(part), -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(m[1]))
		}
		if format.singlePart {
			break
		}
	}
	if !found && format.singlePart {
		return "", fmt.Errorf("extract %s: document part not found", format.name)
	}
	return strings.TrimSpace(b.String()), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
